package session

import "testing"

func TestUsageLimit(t *testing.T) {
	m := NewManager(2)
	if !m.Use("a") || !m.Use("a") {
		t.Fatalf("first two uses should be allowed")
	}
	if m.Use("a") {
		t.Fatalf("third use should be denied")
	}
	if m.Remaining("a") != 0 {
		t.Fatalf("remaining = %d, want 0", m.Remaining("a"))
	}
	// Other sessions are unaffected.
	if !m.Use("b") {
		t.Fatalf("session b should have its own budget")
	}
}

func TestUnlimitedWhenNoLimit(t *testing.T) {
	m := NewManager(0)
	for i := 0; i < 100; i++ {
		if !m.Use("a") {
			t.Fatalf("use %d denied with no limit", i)
		}
	}
	if m.Remaining("a") != -1 {
		t.Fatalf("remaining = %d, want -1", m.Remaining("a"))
	}
}

func TestLanguageConfirmationFlow(t *testing.T) {
	m := NewManager(0)
	if m.Language("a") != "" || m.PendingLanguage("a") != "" {
		t.Fatalf("fresh session should have no language state")
	}

	m.SuggestLanguage("a", "hindi")
	if m.PendingLanguage("a") != "hindi" {
		t.Fatalf("pending = %q", m.PendingLanguage("a"))
	}
	if m.Language("a") != "" {
		t.Fatalf("suggestion must not become the preference before confirmation")
	}

	m.ConfirmLanguage("a", "hindi")
	if m.Language("a") != "hindi" {
		t.Fatalf("language = %q", m.Language("a"))
	}
	if m.PendingLanguage("a") != "" {
		t.Fatalf("pending suggestion should be cleared after confirmation")
	}
}

func TestReset(t *testing.T) {
	m := NewManager(1)
	m.Use("a")
	m.ConfirmLanguage("a", "english")
	m.Reset("a")
	if !m.Use("a") {
		t.Fatalf("reset should restore the usage budget")
	}
	if m.Language("a") != "" {
		t.Fatalf("reset should clear language state")
	}
}
