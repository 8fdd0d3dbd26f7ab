package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"shotlist/internal"
	"shotlist/internal/storage"
)

// DocumentStore keeps a content-addressed copy of every fetched document
// and records it in the documents table.
type DocumentStore struct {
	db     *storage.DB
	rawDir string
}

func NewDocumentStore(db *storage.DB, rawDir string) *DocumentStore {
	return &DocumentStore{db: db, rawDir: rawDir}
}

func (s *DocumentStore) Store(doc internal.FetchedDocument) (internal.DocumentRow, error) {
	hashBytes := sha256.Sum256(doc.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.rawDir, 0o755); err != nil {
		return internal.DocumentRow{}, err
	}

	rawPath := filepath.Join(s.rawDir, hash+strings.ToLower(filepath.Ext(doc.Name)))
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, doc.Raw, 0o644); err != nil {
			return internal.DocumentRow{}, err
		}
	}

	return s.db.UpsertDocument(doc.Source, doc.Name, string(internal.KindUnknown), doc.ReceivedAt, hash, rawPath, "fetched")
}
