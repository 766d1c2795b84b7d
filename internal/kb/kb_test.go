package kb

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadOrderAndTrim(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "product_info.txt", "Shipping takes 3-5 days.\n\n   \nRefunds are processed within a week.\n")
	writeFile(t, dir, "faq.csv", "question,answer\nHow do I reset my password?,Use the forgot password link.\n")

	docs, err := NewLoader(dir).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{
		"Shipping takes 3-5 days.",
		"Refunds are processed within a week.",
		"Q: How do I reset my password? A: Use the forgot password link.",
	}
	if len(docs) != len(want) {
		t.Fatalf("unexpected corpus size: got %d want %d", len(docs), len(want))
	}
	for i, d := range docs {
		if d.Text != want[i] {
			t.Fatalf("doc %d: got %q want %q", i, d.Text, want[i])
		}
		if d.OriginIndex != i {
			t.Fatalf("doc %d: origin index %d", i, d.OriginIndex)
		}
	}
}

func TestLoadMissingSourcesIsEmptyNotFatal(t *testing.T) {
	docs, err := NewLoader(t.TempDir()).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty corpus, got %d docs", len(docs))
	}
}

func TestLoadIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "product_info.txt", "a\nb\n")

	l := NewLoader(dir)
	first, err := l.Load()
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := l.Load()
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("loads differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("doc %d differs across loads", i)
		}
	}
}
