// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// ContentSecurityPolicy allows scripts from cdnjs and images from the
// media host in addition to the site itself.
func ContentSecurityPolicy(mediaOrigin string) string {
	img := "'self' data:"
	if mediaOrigin != "" {
		img += " " + mediaOrigin
	}
	return strings.Join([]string{
		"default-src 'self'",
		"script-src 'self' https://cdnjs.cloudflare.com",
		"style-src 'self' https://cdnjs.cloudflare.com",
		"img-src " + img,
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
		"frame-ancestors 'self'",
	}, "; ")
}

// SecureHeaders returns middleware adding security-related HTTP headers to
// every response, with csp as the Content-Security-Policy.
func SecureHeaders(csp string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")

			// The legacy XSS filter is disabled; CSP replaces it.
			h.Set("X-XSS-Protection", "0")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}

			next.ServeHTTP(w, r)
		})
	}
}
