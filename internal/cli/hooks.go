package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/observability"
)

// debugHooks logs every observability event at debug level.
type debugHooks struct {
	logger *log.Logger
}

func (h debugHooks) OnDispatch(_ context.Context, actionType string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("dispatch", "action", actionType, "took", d, "err", err)
		return
	}
	h.logger.Debug("dispatch", "action", actionType, "took", d)
}

func (h debugHooks) OnUndo(context.Context) { h.logger.Debug("undo") }
func (h debugHooks) OnRedo(context.Context) { h.logger.Debug("redo") }

func (h debugHooks) OnSessionEnd(_ context.Context, actions int) {
	h.logger.Debug("session committed", "actions", actions)
}

func (h debugHooks) OnLoad(_ context.Context, backend string, found bool) {
	h.logger.Debug("flow loaded", "backend", backend, "found", found)
}

func (h debugHooks) OnSave(_ context.Context, backend string, size int) {
	h.logger.Debug("flow saved", "backend", backend, "bytes", size)
}

func (h debugHooks) OnDelete(_ context.Context, backend string) {
	h.logger.Debug("flow deleted", "backend", backend)
}

func (h debugHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h debugHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "took", d)
}

// installDebugHooks routes observability events to l when it logs at debug
// level. It reports whether the hooks were installed.
func installDebugHooks(l *log.Logger) bool {
	if l.GetLevel() > log.DebugLevel {
		return false
	}
	h := debugHooks{logger: l}
	observability.SetDispatchHooks(h)
	observability.SetStorageHooks(h)
	observability.SetHTTPHooks(h)
	return true
}
