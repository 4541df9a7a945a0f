package audiograph

import (
	"log/slog"

	"github.com/arborly/audiograph/playback"
)

// ErrorHandler is a pluggable sink for the fatal errors a playback.Loop's
// worker can raise. It generalizes across whatever the caller wants to do
// with a failure — log it, escalate it, or panic during development.
type ErrorHandler interface {
	HandleError(error)
}

// DefaultErrorHandler logs errors at Error level via slog.Default().
type DefaultErrorHandler struct{}

func (DefaultErrorHandler) HandleError(err error) {
	slog.Default().Error("audiograph: playback error", "err", err)
}

// LoggingErrorHandler calls log, then forwards to underlying (which may
// be nil, meaning log is the only effect).
type LoggingErrorHandler struct {
	underlying ErrorHandler
	log        func(error)
}

// NewLoggingErrorHandler returns a LoggingErrorHandler wrapping underlying.
func NewLoggingErrorHandler(underlying ErrorHandler, log func(error)) *LoggingErrorHandler {
	return &LoggingErrorHandler{underlying: underlying, log: log}
}

func (h *LoggingErrorHandler) HandleError(err error) {
	if h.log != nil {
		h.log(err)
	}
	if h.underlying != nil {
		h.underlying.HandleError(err)
	}
}

// PanicErrorHandler panics on any error; useful while developing a new
// graph, never in a shipped deployment.
type PanicErrorHandler struct{}

func (PanicErrorHandler) HandleError(err error) {
	panic("audiograph: playback error: " + err.Error())
}

// Hook adapts an ErrorHandler to playback.WithErrorHook's callback shape.
func Hook(h ErrorHandler) playback.ErrorHook {
	return func(err error) { h.HandleError(err) }
}
