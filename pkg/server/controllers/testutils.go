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

package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/app"
	mw "github.com/researchos/researchos/pkg/server/middleware"
)

// testCSRFKey is the CSRF key of servers made by MustNewCSRFServer
const testCSRFKey = "0123456789abcdef0123456789abcdef"

// MustNewServer is a test utility function to initialize a new server
// with the given app
func MustNewServer(t *testing.T, a *app.App) *httptest.Server {
	server, err := NewServer(a)
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing router"))
	}
	return server
}

// MustNewCSRFServer returns a test server with CSRF protection of cookie
// sessions turned on. Rate limits apply too, as they do outside tests.
func MustNewCSRFServer(t *testing.T, a *app.App) *httptest.Server {
	a.AppEnv = "PRODUCTION"
	a.CSRFKey = testCSRFKey

	return MustNewServer(t, a)
}

// NewServer returns a test server running the routes of the app
func NewServer(a *app.App) (*httptest.Server, error) {
	ctl := New(a)
	rc := RouteConfig{
		WebRoutes:   NewWebRoutes(a, ctl),
		APIRoutes:   NewAPIRoutes(a, ctl),
		Controllers: ctl,
	}
	r, err := NewRouter(a, rc)
	if err != nil {
		return nil, errors.Wrap(err, "initializing router")
	}

	return httptest.NewServer(r), nil
}

// NewCookieClient returns a client that sends the session key as the
// session cookie and keeps the cookies the server sets
func NewCookieClient(t *testing.T, server *httptest.Server, sessionKey string) *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating cookie jar"))
	}

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(errors.Wrap(err, "parsing server url"))
	}
	jar.SetCookies(u, []*http.Cookie{{Name: mw.SessionCookieName, Value: sessionKey, Path: "/"}})

	return &http.Client{Jar: jar}
}

// MustFetchCSRFToken asks the server for the CSRF token of the client's
// cookie session
func MustFetchCSRFToken(t *testing.T, hc *http.Client, server *httptest.Server) string {
	res, err := hc.Get(server.URL + "/api/auth/csrf")
	if err != nil {
		t.Fatal(errors.Wrap(err, "requesting csrf token"))
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("csrf token status %d", res.StatusCode)
	}

	var body CSRFResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatal(errors.Wrap(err, "decoding csrf token"))
	}
	if body.Token == "" {
		t.Fatal("empty csrf token")
	}

	return body.Token
}
