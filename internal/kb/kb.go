// Package kb loads the support knowledge base into a flat ordered corpus of
// text chunks. The corpus is rebuildable from the source files at any time;
// loading has no side effects.
package kb

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	productInfoFile = "product_info.txt"
	faqFile         = "faq.csv"
)

// Document is an immutable text chunk of the knowledge base. OriginIndex is
// the chunk's position in the corpus and is stable across rebuilds of the
// same corpus.
type Document struct {
	Text        string
	OriginIndex int
}

type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads all configured sources in order: the flat product-info text
// file (one chunk per line) followed by the FAQ CSV (one "Q: ... A: ..."
// chunk per row). Missing source files are skipped; whitespace-only chunks
// are dropped. An empty corpus is legal.
func (l *Loader) Load() ([]Document, error) {
	var chunks []string

	productPath := filepath.Join(l.dir, productInfoFile)
	if data, err := os.ReadFile(productPath); err == nil {
		chunks = append(chunks, strings.Split(string(data), "\n")...)
	}

	faqPath := filepath.Join(l.dir, faqFile)
	if f, err := os.Open(faqPath); err == nil {
		faqChunks, err := readFAQ(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read faq csv: %w", err)
		}
		chunks = append(chunks, faqChunks...)
	}

	var docs []Document
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		docs = append(docs, Document{Text: c, OriginIndex: len(docs)})
	}
	return docs, nil
}

func readFAQ(f *os.File) ([]string, error) {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	qCol, aCol := columnIndexes(rows[0])
	if qCol < 0 || aCol < 0 {
		return nil, fmt.Errorf("faq csv is missing question/answer columns")
	}

	var out []string
	for _, row := range rows[1:] {
		if len(row) <= qCol || len(row) <= aCol {
			continue
		}
		out = append(out, fmt.Sprintf("Q: %s A: %s", row[qCol], row[aCol]))
	}
	return out, nil
}

func columnIndexes(header []string) (qCol, aCol int) {
	qCol, aCol = -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "question":
			qCol = i
		case "answer":
			aCol = i
		}
	}
	return qCol, aCol
}

// Texts returns the corpus texts in origin order.
func Texts(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Text
	}
	return out
}
