package connectors

import (
	"shotlist/internal/storage"
)

type FetchService struct {
	source Source
	store  *DocumentStore
}

type FetchResult struct {
	Fetched int
	Stored  int
	Changed int
}

func NewFetchService(db *storage.DB, rawDir string, source Source) *FetchService {
	return &FetchService{
		source: source,
		store:  NewDocumentStore(db, rawDir),
	}
}

// FetchAndStore copies new documents into the raw store. Changed counts the
// documents that are waiting for processing after the upsert.
func (s *FetchService) FetchAndStore(max int) (FetchResult, error) {
	docs, err := s.source.Fetch(max)
	if err != nil {
		return FetchResult{}, err
	}

	res := FetchResult{Fetched: len(docs)}
	for _, doc := range docs {
		row, err := s.store.Store(doc)
		if err != nil {
			return res, err
		}
		res.Stored++
		if row.Status == "fetched" {
			res.Changed++
		}
	}
	return res, nil
}
