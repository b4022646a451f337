package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/bissquit/incident-drill/internal/pkg/ctxlog"
)

// ErrorMapping binds a sentinel error, such as a locked phase or an unknown
// session, to the status and message of the error envelope.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // if empty, uses err.Error()
}

// HandleError writes the envelope of the first mapping err matches with errors.Is.
// Rejections are logged at debug level. Anything unmapped is logged and
// answered with 500.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Error) {
			msg := m.Message
			if msg == "" {
				msg = err.Error()
			}
			ctxlog.FromContext(ctx).Debug("request rejected", "status", m.Status, "error", err)
			Error(w, m.Status, msg)
			return
		}
	}
	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
