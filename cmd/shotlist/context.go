package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"shotlist/internal/breakdown"
	"shotlist/internal/config"
	"shotlist/internal/llm"
	"shotlist/internal/log"
	"shotlist/internal/pipeline"
	"shotlist/internal/rules"
	"shotlist/internal/storage"
)

type commandContext struct {
	rulesFlag    *string
	logLevelFlag *string

	configOnce sync.Once
	config     config.Config
	rules      *rules.Rules
	configErr  error

	db *storage.DB
}

func newCommandContext(rulesFlag, logLevelFlag *string) *commandContext {
	return &commandContext{rulesFlag: rulesFlag, logLevelFlag: logLevelFlag}
}

// ensureConfig loads .env and config, then initializes logging so that
// SHOTLIST_LOG_* values from .env apply.
func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}
		opts := log.FromEnv()
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			opts.Level = *c.logLevelFlag
		}
		log.Init(opts)

		path := cfg.RulesPath
		if c.rulesFlag != nil && strings.TrimSpace(*c.rulesFlag) != "" {
			path = *c.rulesFlag
		}
		r, err := rules.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load rules: %w", err)
			return
		}
		c.config = cfg
		c.rules = r
	})
	return c.config, c.configErr
}

func (c *commandContext) openDB() (*storage.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	if _, err := c.ensureConfig(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(c.config.DBPath), 0o755); err != nil {
		return nil, err
	}
	db, err := storage.Open(c.config.DBPath)
	if err != nil {
		return nil, err
	}
	c.db = db
	return db, nil
}

func (c *commandContext) close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *commandContext) completer() (llm.Completer, error) {
	return llm.New(c.config)
}

// processor builds the processing service. Screenplays are broken down only
// when an LLM is configured.
func (c *commandContext) processor(db *storage.DB) *pipeline.ProcessingService {
	svc := pipeline.NewProcessingService(db, c.config, c.rules)
	completer, err := c.completer()
	if err != nil {
		log.WithComponent("cli").Info("screenplay breakdown disabled", "reason", err.Error())
		return svc
	}
	stage := breakdown.NewStage(completer, breakdownParams(c.config), c.rules)
	return svc.WithScreenplayStage(stage.ScreenplayStage())
}

func breakdownParams(cfg config.Config) llm.Params {
	params := breakdown.DefaultParams()
	if cfg.LLMMaxTokens > 0 {
		params.MaxTokens = cfg.LLMMaxTokens
	}
	return params
}
