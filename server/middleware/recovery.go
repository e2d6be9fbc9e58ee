package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/logger"
)

// Recovery returns middleware that turns a handler panic into a 500 with the
// standard error body and logs the stack.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.WithContext(r.Context()).Error("panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					"path", r.URL.Path,
					logger.FieldMethod, r.Method,
				))
				appErr := errors.Internal(fmt.Errorf("panic: %v", rec))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(appErr.HTTPStatus)
				_ = json.NewEncoder(w).Encode(appErr.ToResponse())
			}()
			next.ServeHTTP(w, r)
		})
	}
}
