package main

import (
	"context"
	"strings"
	"sync"

	"github.com/cesargomez89/cratedigger/internal/app"
	"github.com/cesargomez89/cratedigger/internal/config"
	"github.com/cesargomez89/cratedigger/internal/logger"
)

type commandContext struct {
	dbFlag    *string
	ownerFlag *string

	once   sync.Once
	config *config.Config
	rt     *app.Runtime
	err    error
}

func newCommandContext(dbFlag, ownerFlag *string) *commandContext {
	return &commandContext{dbFlag: dbFlag, ownerFlag: ownerFlag}
}

// runtime opens the database and wires the services on first use.
func (c *commandContext) runtime(ctx context.Context) (*app.Runtime, error) {
	c.once.Do(func() {
		cfg := config.Load()
		if c.dbFlag != nil && strings.TrimSpace(*c.dbFlag) != "" {
			cfg.DBPath = strings.TrimSpace(*c.dbFlag)
		}
		if err := cfg.Validate(); err != nil {
			c.err = err
			return
		}
		c.config = cfg
		log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
		c.rt, c.err = app.NewRuntime(ctx, cfg, log)
	})
	return c.rt, c.err
}

func (c *commandContext) owner() string {
	if c.ownerFlag != nil && strings.TrimSpace(*c.ownerFlag) != "" {
		return strings.TrimSpace(*c.ownerFlag)
	}
	if c.config != nil {
		return c.config.DefaultOwner
	}
	return config.Load().DefaultOwner
}

func (c *commandContext) close() error {
	if c.rt == nil {
		return nil
	}
	rt := c.rt
	c.rt = nil
	return rt.Close()
}
