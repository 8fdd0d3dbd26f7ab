package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"shotlist/internal/config"
	"shotlist/internal/connectors"
	"shotlist/internal/log"
	"shotlist/internal/pipeline"
	"shotlist/internal/storage"
)

type Service struct {
	db        *storage.DB
	cfg       config.Config
	source    connectors.Source
	processor *pipeline.ProcessingService
}

func NewService(db *storage.DB, cfg config.Config, source connectors.Source, processor *pipeline.ProcessingService) *Service {
	return &Service{db: db, cfg: cfg, source: source, processor: processor}
}

func (s *Service) Run(ctx context.Context) error {
	logger := log.WithComponent("listener")
	interval := time.Duration(s.cfg.ListenerIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	for {
		if err := s.RunCycle(ctx); err != nil {
			logger.Error("listener cycle error", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunCycle fetches new inbox documents, processes pending ones and, when
// enabled, exports every processed document.
func (s *Service) RunCycle(ctx context.Context) error {
	fetchService := connectors.NewFetchService(s.db, s.cfg.RawDir, s.source)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.ListenerBatch)
	if err != nil {
		return err
	}

	processedDocs, processedShots, procErr := s.processor.ProcessPending(ctx, s.cfg.ListenerBatch)

	exported := 0
	if s.cfg.ListenerAutoExport {
		exported, err = s.exportProcessed()
		if err != nil {
			return err
		}
	}

	log.WithComponent("listener").Info("listener cycle done",
		"source", s.source.Name(),
		"fetched", fetchResult.Fetched,
		"changed", fetchResult.Changed,
		"processed", processedDocs,
		"shots", processedShots,
		"exported", exported,
	)
	return procErr
}

func (s *Service) exportProcessed() (int, error) {
	docs, err := s.db.ListDocumentsByStatus(pipeline.StatusProcessed, 200)
	if err != nil {
		return 0, err
	}

	exported := 0
	for _, doc := range docs {
		shots, err := s.db.ListShots(doc.ID)
		if err != nil {
			return exported, err
		}
		if len(shots) == 0 {
			continue
		}
		base := filepath.Join(s.cfg.OutputDir, "listener", fmt.Sprintf("%d_%s", doc.ID, sanitizeName(doc.Name)))
		if err := pipeline.WriteCSV(shots, base+".csv"); err != nil {
			return exported, err
		}
		sets := pipeline.Consolidate(shots, s.processor.Rules())
		if err := pipeline.ExportXLSX(shots, sets, base+".xlsx"); err != nil {
			return exported, err
		}
		_ = s.db.UpdateDocumentStatus(doc.ID, pipeline.StatusExported)
		exported++
	}
	return exported, nil
}

func sanitizeName(input string) string {
	input = strings.TrimSuffix(input, filepath.Ext(input))
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
