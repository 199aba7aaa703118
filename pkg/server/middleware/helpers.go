/* Copyright 2025 ResearchOS Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/app"
	"github.com/researchos/researchos/pkg/server/log"
)

// SessionCookieName is the name of the cookie carrying the session key
const SessionCookieName = "id"

// Middleware wraps the handler of a route
type Middleware func(h http.HandlerFunc, app *app.App, rateLimit bool) http.Handler

// errorPayload is the envelope of every error response
type errorPayload struct {
	Error string `json:"error"`
}

// RespondError writes a JSON error envelope with the given status
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(errorPayload{Error: message}); err != nil {
		log.ErrorWrap(err, "encoding error payload")
	}
}

// DoError logs the error and responds with the generic text of the status
func DoError(w http.ResponseWriter, msg string, err error, statusCode int) {
	log.WithFields(log.Fields{
		"status": statusCode,
	}).ErrorWrap(err, msg)

	RespondError(w, http.StatusText(statusCode), statusCode)
}

// RespondUnauthorized responds with unauthorized
func RespondUnauthorized(w http.ResponseWriter) {
	w.Header().Add("WWW-Authenticate", `Bearer realm="ResearchOS"`)
	RespondError(w, string(app.ErrLoginRequired), http.StatusUnauthorized)
}

// NotFound responds to requests that match no route
func NotFound(w http.ResponseWriter, r *http.Request) {
	RespondError(w, "Not found", http.StatusNotFound)
}

func getSessionKeyFromCookie(r *http.Request) (string, error) {
	c, err := r.Cookie(SessionCookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	} else if err != nil {
		return "", errors.Wrap(err, "reading cookie")
	}

	return c.Value, nil
}

func getSessionKeyFromAuth(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", nil
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.Errorf("invalid authorization header '%s'", h)
	}

	return strings.TrimSpace(parts[1]), nil
}

// GetCredential extracts a session key from the request. The Authorization
// header takes precedence over the cookie.
func GetCredential(r *http.Request) (string, error) {
	key, err := getSessionKeyFromAuth(r)
	if err != nil {
		return "", errors.Wrap(err, "getting session key from Authorization header")
	}
	if key != "" {
		return key, nil
	}

	key, err = getSessionKeyFromCookie(r)
	if err != nil {
		return "", errors.Wrap(err, "getting session key from cookie")
	}

	return key, nil
}

func hasBearer(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// APIMw is the middleware for the API routes
func APIMw(h http.HandlerFunc, a *app.App, rateLimit bool) http.Handler {
	return ApplyLimit(CSRF(a, h).ServeHTTP, a, rateLimit)
}

// WebMw is the middleware for the routes outside the API
func WebMw(h http.HandlerFunc, a *app.App, rateLimit bool) http.Handler {
	return ApplyLimit(h, a, rateLimit)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Global is the middleware applied to every request. It logs the request
// once the response is written.
func Global(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		h.ServeHTTP(rec, r)

		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
			"remote":   lookupIP(r),
		}).Info("request")
	})
}
