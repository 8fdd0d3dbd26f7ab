package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"shotlist/internal/breakdown"
	"shotlist/internal/config"
	"shotlist/internal/connectors"
	"shotlist/internal/listener"
	"shotlist/internal/llm"
	"shotlist/internal/log"
	"shotlist/internal/pipeline"
	"shotlist/internal/rules"
	"shotlist/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log.Init(log.FromEnv())

	r, err := rules.Load(cfg.RulesPath)
	must(err)

	must(os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755))
	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	processor := pipeline.NewProcessingService(db, cfg, r)
	if completer, err := llm.New(cfg); err == nil {
		params := breakdown.DefaultParams()
		if cfg.LLMMaxTokens > 0 {
			params.MaxTokens = cfg.LLMMaxTokens
		}
		processor.WithScreenplayStage(breakdown.NewStage(completer, params, r).ScreenplayStage())
	} else {
		log.WithComponent("listener").Warn("screenplay breakdown disabled", "reason", err.Error())
	}

	svc := listener.NewService(db, cfg, connectors.NewDirSource(cfg.InboxDir), processor)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
