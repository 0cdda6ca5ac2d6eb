// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the response for a recovered panic.
type PanicHandler func(w http.ResponseWriter, r *http.Request, err error)

// Recover returns middleware that catches panics in downstream handlers,
// logs the stack trace, and hands the failure to onPanic. A nil onPanic
// writes a plain 500 Internal Server Error.
func Recover(onPanic PanicHandler) func(http.Handler) http.Handler {
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

				slog.Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				if onPanic == nil {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				onPanic(w, r, err)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Recoverer is Recover with the plain-text 500 response.
func Recoverer(next http.Handler) http.Handler {
	return Recover(nil)(next)
}
