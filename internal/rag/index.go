// Package rag builds and queries the semantic index over the knowledge base.
// The index is a flat L2 nearest-neighbor structure over fixed-dimension
// embeddings, persisted to disk together with a fingerprint of the corpus it
// was built from. A persisted artifact whose fingerprint does not match the
// current corpus is discarded and rebuilt rather than trusted.
package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gensupport/internal/kb"
	"gensupport/internal/llm"
)

const defaultTimeout = 30 * time.Second

// FallbackText is returned as the single retrieval result when no usable
// neighbor exists. Callers never see an empty result set.
const FallbackText = "We are reviewing this issue and will get back soon."

// artifact is the persisted form of the index.
type artifact struct {
	Fingerprint string      `json:"fingerprint"`
	Dim         int         `json:"dim"`
	Vectors     [][]float32 `json:"vectors"`
}

// Index answers top-k L2 similarity queries over the corpus. It is
// read-mostly: searches take a read lock, rebuilds take the write lock and
// are exclusive relative to readers.
type Index struct {
	embedder llm.Embedder
	path     string
	timeout  time.Duration

	mu      sync.RWMutex
	docs    []kb.Document
	vectors [][]float32
	dim     int
}

func New(embedder llm.Embedder, path string, timeout time.Duration) *Index {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Index{embedder: embedder, path: path, timeout: timeout}
}

// Build embeds the whole corpus, replaces the in-memory index and persists
// the artifact keyed to the corpus fingerprint. While a rebuild is in
// progress no search runs against it.
func (ix *Index) Build(ctx context.Context, docs []kb.Document) error {
	var vectors [][]float32
	dim := 0
	if len(docs) > 0 {
		embedCtx, cancel := context.WithTimeout(ctx, ix.timeout)
		defer cancel()
		var err error
		vectors, err = ix.embedder.EmbedBatch(embedCtx, kb.Texts(docs))
		if err != nil {
			return fmt.Errorf("failed to embed corpus: %w", err)
		}
		dim = len(vectors[0])
		for i, v := range vectors {
			if len(v) != dim {
				return fmt.Errorf("inconsistent embedding dimension at %d: %d != %d", i, len(v), dim)
			}
		}
	}

	ix.mu.Lock()
	ix.docs = docs
	ix.vectors = vectors
	ix.dim = dim
	ix.mu.Unlock()

	return ix.persist(Fingerprint(docs), dim, vectors)
}

// LoadOrBuild loads the persisted index if its fingerprint matches the
// current corpus, otherwise builds and persists a fresh one.
func (ix *Index) LoadOrBuild(ctx context.Context, docs []kb.Document) error {
	art, err := ix.readArtifact()
	if err == nil && art.Fingerprint == Fingerprint(docs) && len(art.Vectors) == len(docs) {
		ix.mu.Lock()
		ix.docs = docs
		ix.vectors = art.Vectors
		ix.dim = art.Dim
		ix.mu.Unlock()
		return nil
	}
	return ix.Build(ctx, docs)
}

// Search embeds the query with the build-time embedder and returns the
// top-k nearest documents, at most topK of them. Neighbor indices outside
// the current corpus bounds are dropped. If nothing usable remains, exactly
// one placeholder document is returned. The embedding call is bounded by
// the index timeout and runs before the read lock is taken, so a slow
// embedder never holds up a rebuild.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]kb.Document, error) {
	if topK <= 0 || ix.Size() == 0 {
		return []kb.Document{{Text: FallbackText, OriginIndex: -1}}, nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, ix.timeout)
	defer cancel()
	qv, err := ix.embedder.Embed(embedCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	type neighbor struct {
		idx  int
		dist float32
	}
	neighbors := make([]neighbor, 0, len(ix.vectors))
	for i, v := range ix.vectors {
		neighbors = append(neighbors, neighbor{idx: i, dist: l2Squared(qv, v)})
	}
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].dist != neighbors[b].dist {
			return neighbors[a].dist < neighbors[b].dist
		}
		return neighbors[a].idx < neighbors[b].idx
	})

	var results []kb.Document
	for _, n := range neighbors {
		if len(results) == topK {
			break
		}
		if n.idx < 0 || n.idx >= len(ix.docs) {
			continue
		}
		results = append(results, ix.docs[n.idx])
	}
	if len(results) == 0 {
		return []kb.Document{{Text: FallbackText, OriginIndex: -1}}, nil
	}
	return results, nil
}

// Size reports the number of indexed documents.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Fingerprint hashes the corpus content. The persisted index is only
// trusted when its fingerprint matches the corpus it is asked to serve.
func Fingerprint(docs []kb.Document) string {
	h := sha256.New()
	for _, d := range docs {
		h.Write([]byte(d.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (ix *Index) persist(fingerprint string, dim int, vectors [][]float32) error {
	if ix.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(ix.path), 0o755); err != nil {
		return fmt.Errorf("failed to ensure index dir: %w", err)
	}
	data, err := json.Marshal(artifact{Fingerprint: fingerprint, Dim: dim, Vectors: vectors})
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := os.WriteFile(ix.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

func (ix *Index) readArtifact() (artifact, error) {
	if ix.path == "" {
		return artifact{}, os.ErrNotExist
	}
	data, err := os.ReadFile(ix.path)
	if err != nil {
		return artifact{}, err
	}
	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return artifact{}, fmt.Errorf("failed to decode index: %w", err)
	}
	return art, nil
}

func l2Squared(a, b []float32) float32 {
	// Dimension mismatch means the vector spaces diverged; treat as
	// maximally distant instead of panicking.
	if len(a) != len(b) {
		return float32(math.Inf(1))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}
