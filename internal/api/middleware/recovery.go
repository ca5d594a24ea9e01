package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/arenagame-go/internal/api/apierr"
	"github.com/mcoot/arenagame-go/internal/middleware"
)

// Recovery creates panic recovery middleware for the API that answers
// with a JSON internal error
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
