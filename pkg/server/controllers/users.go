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

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/app"
	"github.com/researchos/researchos/pkg/server/context"
	"github.com/researchos/researchos/pkg/server/database"
	mw "github.com/researchos/researchos/pkg/server/middleware"
	"github.com/researchos/researchos/pkg/server/presenters"
)

// NewUsers creates a new Users controller
func NewUsers(app *app.App) *Users {
	return &Users{
		app: app,
	}
}

// Users is a user controller.
type Users struct {
	app *app.App
}

// RegistrationForm is the form data for registering a user
type RegistrationForm struct {
	Name         string `schema:"name" json:"name"`
	Email        string `schema:"email" json:"email"`
	Password     string `schema:"password" json:"password"`
	Institution  string `schema:"institution" json:"institution"`
	Department   string `schema:"department" json:"department"`
	Role         string `schema:"role" json:"role"`
	ResearchArea string `schema:"researchArea" json:"researchArea"`
	Country      string `schema:"country" json:"country"`
	State        string `schema:"state" json:"state"`
	City         string `schema:"city" json:"city"`
	OrcidID      string `schema:"orcidId" json:"orcidId"`
}

// RegisterResponse is the response of a successful registration
type RegisterResponse struct {
	User              presenters.RegisteredUser `json:"user"`
	NeedsVerification bool                      `json:"needsVerification"`
}

// Register creates an unverified user and sends the verification code
func (u *Users) Register(w http.ResponseWriter, r *http.Request) {
	var form RegistrationForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	user, err := u.app.Register(app.RegisterParams{
		Name:         form.Name,
		Email:        form.Email,
		Password:     form.Password,
		Institution:  form.Institution,
		Department:   form.Department,
		Role:         form.Role,
		ResearchArea: form.ResearchArea,
		Country:      form.Country,
		State:        form.State,
		City:         form.City,
		OrcidID:      form.OrcidID,
	})
	if err != nil {
		statusCode, message := getStatusCode(err, "Failed to create account")
		handleJSONErrorWithMessage(w, err, "registering user", statusCode, message)
		return
	}

	respondJSON(w, http.StatusOK, RegisterResponse{
		User:              presenters.PresentRegisteredUser(user),
		NeedsVerification: true,
	})
}

// VerifyEmailForm is the form data for verifying an email address
type VerifyEmailForm struct {
	Email string `schema:"email" json:"email"`
	Code  string `schema:"code" json:"code"`
}

// VerifyEmailResponse is the response of a successful verification
type VerifyEmailResponse struct {
	Success bool               `json:"success"`
	Session presenters.Session `json:"session"`
}

// VerifyEmail checks the code and signs the user in
func (u *Users) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var form VerifyEmailForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	user, err := u.app.VerifyEmail(form.Email, form.Code)
	if err != nil {
		statusCode, message := getStatusCode(err, "Verification failed")
		handleJSONErrorWithMessage(w, err, "verifying email", statusCode, message)
		return
	}

	session, err := u.app.SignIn(&user)
	if err != nil {
		handleJSONError(w, err, "signing in verified user")
		return
	}

	setSessionCookie(w, session.Key, session.ExpiresAt)
	respondJSON(w, http.StatusOK, VerifyEmailResponse{
		Success: true,
		Session: presenters.PresentSession(*session),
	})
}

// ResendCodeForm is the form data for requesting a new code
type ResendCodeForm struct {
	Email string `schema:"email" json:"email"`
}

// ResendCodeResponse is the response of a successful resend
type ResendCodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ResendCode issues a new verification code
func (u *Users) ResendCode(w http.ResponseWriter, r *http.Request) {
	var form ResendCodeForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if err := u.app.ResendCode(form.Email); err != nil {
		statusCode, message := getStatusCode(err, "Failed to resend code")
		handleJSONErrorWithMessage(w, err, "resending code", statusCode, message)
		return
	}

	respondJSON(w, http.StatusOK, ResendCodeResponse{
		Success: true,
		Message: "Verification code sent",
	})
}

// LoginForm is the form data for log in
type LoginForm struct {
	Email    string `schema:"email" json:"email"`
	Password string `schema:"password" json:"password"`
}

func (u *Users) login(form LoginForm) (*database.Session, error) {
	if form.Email == "" {
		return nil, app.ErrEmailRequired
	}
	if form.Password == "" {
		return nil, app.ErrPasswordRequired
	}

	user, err := u.app.Authenticate(form.Email, form.Password)
	if err != nil {
		// If the user is not found, treat it as invalid login
		if errors.Is(err, app.ErrNotFound) {
			return nil, app.ErrLoginInvalid
		}

		return nil, err
	}

	return u.app.SignIn(user)
}

// SignIn handles login
func (u *Users) SignIn(w http.ResponseWriter, r *http.Request) {
	var form LoginForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	session, err := u.login(form)
	if err != nil {
		handleJSONError(w, err, "logging in user")
		return
	}

	respondWithSession(w, http.StatusOK, session)
}

func (u *Users) logout(r *http.Request) (bool, error) {
	key, err := mw.GetCredential(r)
	if err != nil {
		return false, errors.Wrap(err, "getting credentials")
	}

	if key == "" {
		return false, nil
	}

	if err = u.app.DeleteSession(key); err != nil {
		return false, errors.Wrap(err, "deleting session")
	}

	return true, nil
}

// SignOut deletes the session of the request
func (u *Users) SignOut(w http.ResponseWriter, r *http.Request) {
	ok, err := u.logout(r)
	if err != nil {
		handleJSONError(w, err, "logging out")
		return
	}

	if ok {
		unsetSessionCookie(w)
	}

	w.WriteHeader(http.StatusNoContent)
}

// MeResponse is the response for the current user
type MeResponse struct {
	User presenters.User `json:"user"`
}

// Me returns the profile of the signed in user
func (u *Users) Me(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		handleJSONError(w, app.ErrLoginRequired, "no authenticated user found")
		return
	}

	respondJSON(w, http.StatusOK, MeResponse{
		User: presenters.PresentUser(*user),
	})
}

// CSRFResponse carries the token to send back in the X-CSRF-Token header
type CSRFResponse struct {
	Token string `json:"csrfToken"`
}

// CSRF returns the token for the cookie session of the request
func (u *Users) CSRF(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, CSRFResponse{
		Token: mw.CSRFToken(r),
	})
}
