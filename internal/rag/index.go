package rag

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	apperrors "github.com/manmad-web/sfubot/internal/errors"
	"github.com/manmad-web/sfubot/internal/logger"
	"github.com/manmad-web/sfubot/internal/metrics"
	"github.com/manmad-web/sfubot/internal/scraper"
)

// addConcurrency bounds parallel embedding calls while building the index.
const addConcurrency = 4

// Index is an in-memory vector index over the scraped corpus.
// Queries are rejected with ErrIndexNotReady until Build completes.
type Index struct {
	collection *chromem.Collection

	mu    sync.RWMutex
	ready bool
	count int

	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewIndex creates an empty index using the given embedding function.
// The metrics argument may be nil.
func NewIndex(embed chromem.EmbeddingFunc, log *logger.Logger, m *metrics.Metrics) (*Index, error) {
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection("sfu-corpus", nil, embed)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &Index{
		collection: collection,
		log:        log.WithModule("rag"),
		metrics:    m,
	}, nil
}

// Build chunks the documents, embeds them, and marks the index ready.
// Chunk metadata records the source URL and heading for citation.
func (idx *Index) Build(ctx context.Context, docs []scraper.Document, chunker *Chunker) error {
	var chunks []chromem.Document
	for _, doc := range docs {
		for _, piece := range chunker.Split(doc.Content) {
			metadata := map[string]string{"source": doc.Source}
			if doc.Heading != "" {
				metadata["heading"] = doc.Heading
			}
			chunks = append(chunks, chromem.Document{
				ID:       uuid.NewString(),
				Content:  piece,
				Metadata: metadata,
			})
		}
	}

	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index")
	}

	if err := idx.collection.AddDocuments(ctx, chunks, addConcurrency); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}

	idx.mu.Lock()
	idx.ready = true
	idx.count = len(chunks)
	idx.mu.Unlock()

	if idx.metrics != nil {
		idx.metrics.IndexDocuments.Set(float64(len(chunks)))
	}
	idx.log.WithFields(map[string]any{
		"documents": len(docs),
		"chunks":    len(chunks),
	}).Info("document index built")

	return nil
}

// Ready reports whether the index has finished building.
func (idx *Index) Ready() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.ready
}

// Count returns the number of indexed chunks.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.count
}

// Query returns up to topK chunks most similar to the query text, ordered
// by descending similarity.
func (idx *Index) Query(ctx context.Context, query string, topK int) ([]chromem.Result, error) {
	idx.mu.RLock()
	ready, count := idx.ready, idx.count
	idx.mu.RUnlock()

	if !ready {
		return nil, apperrors.ErrIndexNotReady
	}
	if topK > count {
		topK = count
	}
	if topK <= 0 {
		return nil, nil
	}

	results, err := idx.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	return results, nil
}
