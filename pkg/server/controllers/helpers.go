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
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/app"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/log"
	mw "github.com/researchos/researchos/pkg/server/middleware"
	"github.com/researchos/researchos/pkg/server/presenters"
)

var errInvalidPayload = errors.New("Invalid request payload")

func parseValues(values url.Values, dst interface{}) error {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	if err := dec.Decode(dst, values); err != nil {
		return errors.Wrap(errInvalidPayload, err.Error())
	}

	return nil
}

func parseForm(r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return errors.Wrap(errInvalidPayload, err.Error())
	}

	return parseValues(r.PostForm, dst)
}

// parseRequestData decodes a JSON body, or form values for any other
// content type, into dst
func parseRequestData(r *http.Request, dst interface{}) error {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		return parseForm(r, dst)
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrap(errInvalidPayload, err.Error())
	}

	return nil
}

// getStatusCode returns the status code and the message to show for err.
// Errors that are not meant for users get a 500 with the fallback message.
func getStatusCode(err error, fallback string) (int, string) {
	var rateLimitErr *app.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return http.StatusTooManyRequests, rateLimitErr.Error()
	}
	if errors.Is(err, errInvalidPayload) {
		return http.StatusBadRequest, errInvalidPayload.Error()
	}

	msg, ok := app.PublicMessage(err)
	if !ok {
		return http.StatusInternalServerError, fallback
	}

	switch {
	case errors.Is(err, app.ErrNotFound),
		errors.Is(err, app.ErrUserNotFound),
		errors.Is(err, app.ErrProjectNotFound),
		errors.Is(err, app.ErrNoteNotFound),
		errors.Is(err, app.ErrFileNotFound):
		return http.StatusNotFound, msg
	case errors.Is(err, app.ErrEmailNotVerified),
		errors.Is(err, app.ErrRegistrationDisabled):
		return http.StatusForbidden, msg
	case errors.Is(err, app.ErrLoginRequired):
		return http.StatusUnauthorized, msg
	case errors.Is(err, app.ErrAssistantUnavailable):
		return http.StatusServiceUnavailable, msg
	}

	return http.StatusBadRequest, msg
}

// handleJSONError responds with the error envelope. Unexpected errors are
// logged with msg as the context.
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	statusCode, message := getStatusCode(err, "Something went wrong")
	handleJSONErrorWithMessage(w, err, msg, statusCode, message)
}

func handleJSONErrorWithMessage(w http.ResponseWriter, err error, msg string, statusCode int, message string) {
	if statusCode >= http.StatusInternalServerError {
		log.ErrorWrap(err, msg)
	}

	mw.RespondError(w, message, statusCode)
}

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

func setSessionCookie(w http.ResponseWriter, key string, expires time.Time) {
	cookie := http.Cookie{
		Name:     mw.SessionCookieName,
		Value:    key,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, &cookie)
}

func unsetSessionCookie(w http.ResponseWriter) {
	cookie := http.Cookie{
		Name:     mw.SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
	}
	http.SetCookie(w, &cookie)
}

// SessionResponse is a response containing a session information
type SessionResponse struct {
	Session presenters.Session `json:"session"`
}

func respondWithSession(w http.ResponseWriter, statusCode int, session *database.Session) {
	setSessionCookie(w, session.Key, session.ExpiresAt)

	respondJSON(w, statusCode, SessionResponse{
		Session: presenters.PresentSession(*session),
	})
}
