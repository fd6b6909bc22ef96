package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/launchpad/internal/app"
	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

type commandContext struct {
	jsonOutput *bool

	once sync.Once
	tk   *app.Toolkit
	err  error
}

func newCommandContext(jsonOutput *bool) *commandContext {
	return &commandContext{jsonOutput: jsonOutput}
}

// toolkit loads config and connects clients once per process.
func (c *commandContext) toolkit(ctx context.Context) (*app.Toolkit, error) {
	c.once.Do(func() {
		cfg, err := loadConfig()
		if err != nil {
			c.err = err
			return
		}
		log := logger.New(cfg.LogLevel, cfg.PrettyLog)
		c.tk = app.NewToolkit(ctx, cfg, log, nil)
	})
	return c.tk, c.err
}

func (c *commandContext) close() {
	if c.tk != nil {
		c.tk.Close()
		_ = c.tk.Logger.Sync()
	}
}

func (c *commandContext) json() bool {
	return c.jsonOutput != nil && *c.jsonOutput
}

// loadConfig turns the missing-variable panic of config.Load into an error.
func loadConfig() (cfg *config.Config, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	return config.Load(), nil
}
