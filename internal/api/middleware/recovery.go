package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"triarb/pkg/logging"
)

// Recovery catches a panic in any downstream handler, logs it with a stack
// trace, and returns 500 instead of taking the whole process down.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logging.Error("panic in HTTP handler",
					logging.Any("panic", err), logging.String("stack", string(debug.Stack())))
				http.Error(w, fmt.Sprintf("internal server error: %v", err), http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
