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
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/app"
	"github.com/researchos/researchos/pkg/server/blob"
	mw "github.com/researchos/researchos/pkg/server/middleware"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	WebRoutes   []Route
	APIRoutes   []Route
}

// NewWebRoutes returns a new web routes
func NewWebRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"GET", "/health", c.Health.Index, false},
	}
}

// NewAPIRoutes returns a new api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"POST", "/auth/register", c.Users.Register, true},
		{"POST", "/auth/verify-email", c.Users.VerifyEmail, true},
		{"POST", "/auth/resend-code", c.Users.ResendCode, true},
		{"POST", "/auth/signin", c.Users.SignIn, true},
		{"POST", "/auth/signout", c.Users.SignOut, true},
		{"GET", "/auth/me", mw.Auth(a, c.Users.Me), true},
		{"GET", "/auth/csrf", c.Users.CSRF, true},

		{"GET", "/projects", mw.Auth(a, c.Projects.Index), true},
		{"POST", "/projects", mw.Auth(a, c.Projects.Create), true},
		{"GET", "/projects/{projectUUID}", mw.Auth(a, c.Projects.Show), true},
		{"PATCH", "/projects/{projectUUID}", mw.Auth(a, c.Projects.Update), true},
		{"DELETE", "/projects/{projectUUID}", mw.Auth(a, c.Projects.Delete), true},

		{"GET", "/projects/{projectUUID}/notes", mw.Auth(a, c.Notes.Index), true},
		{"POST", "/projects/{projectUUID}/notes", mw.Auth(a, c.Notes.Create), true},
		// before /notes/{noteUUID}
		{"POST", "/notes/rephrase", mw.Auth(a, c.Assist.Rephrase), true},
		{"GET", "/notes/{noteUUID}", mw.Auth(a, c.Notes.Show), true},
		{"PATCH", "/notes/{noteUUID}", mw.Auth(a, c.Notes.Update), true},
		{"DELETE", "/notes/{noteUUID}", mw.Auth(a, c.Notes.Delete), true},
		{"GET", "/notes/{noteUUID}/blocks", mw.Auth(a, c.Notes.GetBlocks), true},
		{"PUT", "/notes/{noteUUID}/blocks", mw.Auth(a, c.Notes.PutBlocks), false},

		{"GET", "/projects/{projectUUID}/files", mw.Auth(a, c.Files.Index), true},
		{"POST", "/projects/{projectUUID}/files", mw.Auth(a, c.Files.Upload), true},
		{"DELETE", "/files/{fileUUID}", mw.Auth(a, c.Files.Delete), true},

		{"POST", "/assistant/chat", mw.Auth(a, c.Assist.Chat), true},
	}
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, app *app.App, routes []Route) {
	for _, route := range routes {
		wrappedHandler := wrapper(route.Handler, app, route.RateLimit)

		router.
			Handle(route.Pattern, wrappedHandler).
			Methods(route.Method)
	}
}

// uploadsHandler serves the blobs of a local store under its URL prefix
func uploadsHandler(s *blob.LocalStore) (string, http.Handler) {
	prefix := "/uploads"
	if u, err := url.Parse(s.URLPrefix); err == nil && u.Path != "" && u.Path != "/" {
		prefix = u.Path
	}
	prefix = strings.TrimSuffix(prefix, "/") + "/"

	fs := http.FileServer(http.Dir(s.Dir))
	return prefix, http.StripPrefix(prefix, fs)
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)

	webRouter := router.PathPrefix("/").Subrouter()
	apiRouter := router.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter, mw.APIMw, app, rc.APIRoutes)
	registerRoutes(webRouter, mw.WebMw, app, rc.WebRoutes)

	if local, ok := app.Blob.(*blob.LocalStore); ok {
		prefix, h := uploadsHandler(local)
		router.PathPrefix(prefix).Handler(h)
	}

	router.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /api/"))
	})

	// catch-all
	router.NotFoundHandler = http.HandlerFunc(mw.NotFound)

	return mw.Global(router), nil
}
