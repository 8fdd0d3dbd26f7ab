package catalog

import (
	"fmt"
	"time"

	"shotlist/internal/storage"
)

// ImportService keeps the canonical character list in the database so
// breakdowns processed later resolve against every bible seen so far.
type ImportService struct {
	db *storage.DB
}

func NewImportService(db *storage.DB) *ImportService {
	return &ImportService{db: db}
}

// ImportBible parses bible text and stores its names. It returns the index
// parsed from this bible and the number of names that were new.
func (s *ImportService) ImportBible(text, source string) (*Index, int, error) {
	idx := ParseBible(text)
	if idx.Len() == 0 {
		return idx, 0, fmt.Errorf("no NAME: lines found in %s", source)
	}
	added, err := s.db.UpsertCharacters(idx.Names, source)
	if err != nil {
		return nil, 0, err
	}
	_ = s.db.SetMetadata("characters.last_import", time.Now().UTC().Format(time.RFC3339))
	_ = s.db.SetMetadata("characters.last_source", source)
	return idx, added, nil
}

// Index loads every stored canonical name.
func (s *ImportService) Index() (*Index, error) {
	names, err := s.db.ListCharacters()
	if err != nil {
		return nil, err
	}
	return BuildIndex(names), nil
}

func (s *ImportService) Reset() error {
	if err := s.db.ClearCharacters(); err != nil {
		return err
	}
	return s.db.SetMetadata("characters.last_import", time.Now().UTC().Format(time.RFC3339))
}
