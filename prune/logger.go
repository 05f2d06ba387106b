package prune

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/rvsdg/prune/internal/engine"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the prune package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the prune package's logger.
// This must be called before Run or Fixpoint. The rewrite engine logs
// through the same logger unless Config.Logger overrides it.
func SetLogger(l *zap.Logger) {
	logger = l
	engine.SetLogger(l)
}
