package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"shotlist/internal"
	"shotlist/internal/catalog"
	"shotlist/internal/config"
	"shotlist/internal/log"
	"shotlist/internal/rules"
	"shotlist/internal/storage"
)

// Document status values stored in the documents table.
const (
	StatusFetched   = "fetched"
	StatusProcessed = "processed"
	StatusImported  = "imported"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
	StatusExported  = "exported"
)

// ScreenplayBreakdown is a breakdown report generated from a screenplay,
// with the speakers of each scene keyed by SCENE value.
type ScreenplayBreakdown struct {
	Report          string
	SceneCharacters map[string][]string
}

// ScreenplayStage turns a screenplay into a breakdown report. The processing
// service skips screenplays when none is configured.
type ScreenplayStage func(ctx context.Context, screenplay string) (ScreenplayBreakdown, error)

type ProcessingService struct {
	db         *storage.DB
	cfg        config.Config
	rules      *rules.Rules
	screenplay ScreenplayStage
}

func NewProcessingService(db *storage.DB, cfg config.Config, r *rules.Rules) *ProcessingService {
	if r == nil {
		r = rules.Default()
	}
	return &ProcessingService{db: db, cfg: cfg, rules: r}
}

// WithScreenplayStage enables processing of screenplay documents.
func (s *ProcessingService) WithScreenplayStage(stage ScreenplayStage) *ProcessingService {
	s.screenplay = stage
	return s
}

func (s *ProcessingService) Rules() *rules.Rules { return s.rules }

type ProcessResult struct {
	DocumentID int
	TraceID    string
	Kind       internal.DocumentKind
	Status     string
	Shots      int
	Unresolved int
}

func (s *ProcessingService) ProcessByID(ctx context.Context, id int) (ProcessResult, error) {
	doc, err := s.db.MustDocument(id)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessDocument(ctx, doc)
}

// ProcessPending handles up to limit fetched documents. A failing document
// is marked failed and the batch continues; the joined errors are returned.
func (s *ProcessingService) ProcessPending(ctx context.Context, limit int) (int, int, error) {
	pending, err := s.db.ListDocumentsByStatus(StatusFetched, limit)
	if err != nil {
		return 0, 0, err
	}
	processedDocs, processedShots := 0, 0
	var errs []error
	for _, doc := range pending {
		if err := ctx.Err(); err != nil {
			return processedDocs, processedShots, err
		}
		res, err := s.ProcessDocument(ctx, doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", doc.Name, err))
			continue
		}
		processedDocs++
		processedShots += res.Shots
	}
	return processedDocs, processedShots, errors.Join(errs...)
}

func (s *ProcessingService) ProcessDocument(ctx context.Context, doc internal.DocumentRow) (ProcessResult, error) {
	start := time.Now()
	res := ProcessResult{DocumentID: doc.ID, TraceID: uuid.NewString()}
	logger := log.WithComponent("process").With("trace", res.TraceID, "document", doc.Name)

	counts := map[string]int{}
	err := s.process(ctx, doc, &res, counts)
	if err != nil {
		res.Status = StatusFailed
		logger.Error("document failed", "error", err)
	}
	if uerr := s.db.UpdateDocumentStatus(doc.ID, res.Status); uerr != nil && err == nil {
		err = uerr
	}
	timings := map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}
	if rerr := s.db.InsertRun(res.TraceID, doc.ID, res.Status, timings, counts); rerr != nil {
		logger.Warn("run not recorded", "error", rerr)
	}
	if err != nil {
		return res, err
	}
	logger.Info("document done", "kind", string(res.Kind), "status", res.Status, "shots", res.Shots, "unresolved", res.Unresolved)
	return res, nil
}

func (s *ProcessingService) process(ctx context.Context, doc internal.DocumentRow, res *ProcessResult, counts map[string]int) error {
	raw, err := os.ReadFile(doc.RawRef)
	if err != nil {
		return err
	}
	in, err := ExtractInput(SourceFromName(doc.Name), raw)
	if err != nil {
		return err
	}
	if err := s.db.ClearDocumentProcessing(doc.ID); err != nil {
		return err
	}

	res.Kind = internal.KindTable
	if in.Table == nil {
		res.Kind = DetectDocumentKind(doc.Name, in.Text).Kind
	}
	if err := s.db.UpdateDocumentKind(doc.ID, string(res.Kind)); err != nil {
		return err
	}

	text := in.Text
	var sceneCharacters map[string][]string
	switch res.Kind {
	case internal.KindBible:
		_, added, err := catalog.NewImportService(s.db).ImportBible(text, doc.Name)
		if err != nil {
			return err
		}
		counts["characters"] = added
		res.Status = StatusImported
		return nil
	case internal.KindTable:
		return s.persist(doc.ID, FromTable(in.Table, s.rules), res, counts)
	case internal.KindScreenplay:
		if s.screenplay == nil {
			res.Status = StatusSkipped
			return nil
		}
		generated, err := s.screenplay(ctx, text)
		if err != nil {
			return err
		}
		text, sceneCharacters = generated.Report, generated.SceneCharacters
		counts["breakdownChars"] = len(text)
	case internal.KindBreakdown:
	default:
		res.Status = StatusSkipped
		return nil
	}

	names, err := catalog.NewImportService(s.db).Index()
	if err != nil {
		return err
	}
	parsed, err := ProcessWithIndex(text, names, Options{
		Rules:           s.rules,
		Match:           MatchOptionsFromConfig(s.cfg),
		SceneCharacters: sceneCharacters,
	})
	if err != nil {
		return err
	}
	return s.persist(doc.ID, parsed, res, counts)
}

func (s *ProcessingService) persist(documentID int, parsed *Document, res *ProcessResult, counts map[string]int) error {
	rows := make([]internal.ShotRow, 0, len(parsed.Shots))
	for i, shot := range parsed.Shots {
		rows = append(rows, internal.ShotRow{DocumentID: documentID, ShotIndex: i, ShotID: ShotID(shot, i), Fields: shot})
	}
	if err := s.db.InsertShots(documentID, rows); err != nil {
		return err
	}
	if err := s.db.InsertUnresolved(documentID, parsed.Unresolved); err != nil {
		return err
	}
	res.Status = StatusProcessed
	res.Shots = len(rows)
	res.Unresolved = len(parsed.Unresolved)
	counts["shots"] = res.Shots
	counts["unresolved"] = res.Unresolved
	counts["sets"] = len(parsed.Sets)
	return nil
}
