package connectors

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shotlist/internal"
)

// Source yields documents that arrived since the last fetch.
type Source interface {
	Name() string
	Fetch(max int) ([]internal.FetchedDocument, error)
}

// Extensions accepted from the inbox directory.
var Extensions = map[string]bool{
	".txt": true, ".md": true, ".html": true, ".htm": true,
	".pdf": true, ".csv": true, ".xlsx": true,
}

// DirSource reads every supported file directly inside Dir, oldest first.
// Subdirectories and dot files are ignored.
type DirSource struct {
	Dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

func (s *DirSource) Name() string { return "inbox" }

func (s *DirSource) Fetch(max int) ([]internal.FetchedDocument, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	type candidate struct {
		name    string
		modTime time.Time
	}
	var files []candidate
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !Extensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		files = append(files, candidate{name: e.Name(), modTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].modTime.Equal(files[j].modTime) {
			return files[i].modTime.Before(files[j].modTime)
		}
		return files[i].name < files[j].name
	})
	if max > 0 && len(files) > max {
		files = files[:max]
	}

	out := make([]internal.FetchedDocument, 0, len(files))
	for _, f := range files {
		raw, err := os.ReadFile(filepath.Join(s.Dir, f.name))
		if err != nil {
			return nil, err
		}
		out = append(out, internal.FetchedDocument{
			Source:     s.Name(),
			Name:       f.name,
			ReceivedAt: f.modTime.UTC().Format(time.RFC3339),
			Raw:        raw,
		})
	}
	return out, nil
}
