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
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/researchos/researchos/pkg/server/app"
)

// CSRFHeader is the request header carrying the CSRF token
const CSRFHeader = "X-CSRF-Token"

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}

	return false
}

func hasSessionCookie(r *http.Request) bool {
	c, err := r.Cookie(SessionCookieName)
	return err == nil && c.Value != ""
}

// CSRF protects cookie authenticated requests from cross site forgery. It
// is enabled only when a CSRF key is configured. Requests authenticated with
// a Bearer header and unsafe requests without a session cookie carry no
// ambient credential and pass through.
func CSRF(a *app.App, next http.Handler) http.Handler {
	if a.CSRFKey == "" || a.AppEnv == "TEST" {
		return next
	}

	secure := strings.HasPrefix(a.BaseURL, "https://")
	protect := csrf.Protect(
		[]byte(a.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFHeader),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			RespondError(w, "Invalid CSRF token", http.StatusForbidden)
		})),
	)(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hasBearer(r) || (!isSafeMethod(r.Method) && !hasSessionCookie(r)) {
			next.ServeHTTP(w, r)
			return
		}

		if !secure {
			r = csrf.PlaintextHTTPRequest(r)
		}
		protect.ServeHTTP(w, r)
	})
}

// CSRFToken returns the token for the request, or an empty string when
// protection is disabled
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}
