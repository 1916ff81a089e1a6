package main

import (
	"log/slog"

	"filmwatch/internal/config"
	"filmwatch/internal/logging"
	"filmwatch/internal/store"
)

// commandContext lazily loads shared dependencies for CLI commands.
type commandContext struct {
	configFlag *string

	cfg     *config.Config
	cfgPath string
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = *c.configFlag
	}
	cfg, resolvedPath, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.cfgPath = resolvedPath
	return cfg, nil
}

func (c *commandContext) openStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg)
}

// quietLogger returns a logger for one-shot CLI invocations: command output
// stays on stdout, structured diagnostics are discarded.
func (c *commandContext) quietLogger() *slog.Logger {
	return logging.NewNop()
}
