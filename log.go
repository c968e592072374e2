package qom

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logMu     sync.RWMutex
	activeLog = zap.NewNop().Sugar()
)

// SetLogger installs a structured logger for registration, materialization
// and interface synthesis trace records. The package is silent (a no-op
// core) until a caller opts in; this mirrors the teacher's pattern of
// package-level state initialized once and replaced wholesale rather than
// guarded field-by-field.
func SetLogger(l *zap.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	if l == nil {
		activeLog = zap.NewNop().Sugar()
		return
	}
	activeLog = l.Sugar()
}

func logger() *zap.SugaredLogger {
	logMu.RLock()
	defer logMu.RUnlock()
	return activeLog
}
