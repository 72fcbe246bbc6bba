// Package middleware holds net/http middleware shared by the HTTP layer.
package middleware

import "net/http"

type Middleware func(next http.Handler) http.Handler
