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
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/researchos/researchos/pkg/assert"
	"github.com/researchos/researchos/pkg/clock"
	"github.com/researchos/researchos/pkg/server/app"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/mailer"
	mw "github.com/researchos/researchos/pkg/server/middleware"
	"github.com/researchos/researchos/pkg/server/testutils"
)

type errorResponse struct {
	Error string `json:"error"`
}

func newTestApp(t *testing.T) (app.App, *clock.Mock, *testutils.MockEmailbackendImplementation) {
	a := app.NewTest()
	a.DB = testutils.InitMemoryDB(t)
	c := clock.NewMock()
	a.Clock = c
	emails := &testutils.MockEmailbackendImplementation{}
	a.EmailBackend = emails

	return a, c, emails
}

func mustFindUser(t *testing.T, a app.App, email string) database.User {
	var user database.User
	testutils.MustExec(t, a.DB.Where("email = ?", email).First(&user), "finding user")

	return user
}

func assertError(t *testing.T, res *http.Response, statusCode int, message string) {
	assert.StatusCodeEquals(t, res, statusCode, "status code mismatch")

	var body errorResponse
	testutils.DecodeJSON(t, res, &body)
	assert.Equal(t, body.Error, message, "error message mismatch")
}

func TestRegister(t *testing.T) {
	testutils.RunForFormAndJSON(t, "success", func(t *testing.T, kind testutils.PayloadKind) {
		a, _, emails := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		req := testutils.MakePayloadReq(t, server.URL, "POST", "/api/auth/register", kind, RegistrationForm{
			Name:        "Ada Lovelace",
			Email:       " Ada@Example.com ",
			Password:    "pass1234",
			Institution: "University of London",
			Country:     "India",
			State:       "Kerala",
		})
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")
		var body RegisterResponse
		testutils.DecodeJSON(t, res, &body)

		user := mustFindUser(t, a, "ada@example.com")
		assert.Equal(t, body.NeedsVerification, true, "needsVerification mismatch")
		assert.Equal(t, body.User.UUID, user.UUID, "id mismatch")
		assert.Equal(t, body.User.Name, "Ada Lovelace", "name mismatch")
		assert.Equal(t, body.User.Email, "ada@example.com", "email mismatch")
		assert.Equal(t, user.EmailVerified, false, "user should not be verified")
		assert.Equal(t, user.Institution, "University of London", "institution mismatch")
		assert.Equal(t, user.State, "Kerala", "state mismatch")
		assert.Equal(t, len(user.VerifyCode.String), 6, "code length mismatch")
		assert.Equal(t, len(emails.EmailsOfType(mailer.EmailTypeVerification)), 1, "verification email count mismatch")
		assert.Equal(t, testutils.GetCookieByName(res.Cookies(), mw.SessionCookieName) == nil, true, "registration must not sign in")
	})

	t.Run("duplicate email", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()
		testutils.SetupUserData(a.DB, "Ada", "ada@example.com", "pass1234")

		req := testutils.MakeReq(server.URL, "POST", "/api/auth/register", `{"name":"Ada","email":"ADA@example.com","password":"pass1234"}`)
		req.Header.Set("Content-Type", "application/json")
		res := testutils.HTTPDo(t, req)

		assertError(t, res, http.StatusBadRequest, "User with this email already exists")
	})

	t.Run("validation", func(t *testing.T) {
		testCases := []struct {
			payload string
			message string
		}{
			{`{"email":"ada@example.com","password":"pass1234"}`, "Name is required"},
			{`{"name":"Ada","email":"not-an-email","password":"pass1234"}`, "Invalid email address"},
			{`{"name":"Ada","email":"ada@example.com","password":"short"}`, "Password must be at least 8 characters"},
		}

		for _, tc := range testCases {
			t.Run(tc.message, func(t *testing.T) {
				a, _, emails := newTestApp(t)
				server := MustNewServer(t, &a)
				defer server.Close()

				req := testutils.MakeReq(server.URL, "POST", "/api/auth/register", tc.payload)
				req.Header.Set("Content-Type", "application/json")
				res := testutils.HTTPDo(t, req)

				assertError(t, res, http.StatusBadRequest, tc.message)

				var count int64
				testutils.MustExec(t, a.DB.Model(&database.User{}).Count(&count), "counting users")
				assert.Equal(t, count, int64(0), "user count mismatch")
				assert.Equal(t, len(emails.GetEmails()), 0, "no email should be sent")
			})
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		req := testutils.MakeReq(server.URL, "POST", "/api/auth/register", `{"name":`)
		req.Header.Set("Content-Type", "application/json")
		res := testutils.HTTPDo(t, req)

		assertError(t, res, http.StatusBadRequest, "Invalid request payload")
	})

	t.Run("registration disabled", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		a.DisableRegistration = true
		server := MustNewServer(t, &a)
		defer server.Close()

		req := testutils.MakeReq(server.URL, "POST", "/api/auth/register", `{"name":"Ada","email":"ada@example.com","password":"pass1234"}`)
		req.Header.Set("Content-Type", "application/json")
		res := testutils.HTTPDo(t, req)

		assertError(t, res, http.StatusForbidden, "Registration is disabled")
	})

	t.Run("delivery failure", func(t *testing.T) {
		a, _, emails := newTestApp(t)
		emails.Err = fmt.Errorf("smtp unavailable")
		server := MustNewServer(t, &a)
		defer server.Close()

		req := testutils.MakeReq(server.URL, "POST", "/api/auth/register", `{"name":"Ada","email":"ada@example.com","password":"pass1234"}`)
		req.Header.Set("Content-Type", "application/json")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")
		mustFindUser(t, a, "ada@example.com")
	})
}

func TestVerifyEmail(t *testing.T) {
	testCases := []struct {
		name       string
		code       string
		advance    time.Duration
		statusCode int
		message    string
	}{
		{"wrong code", "654321", 0, http.StatusBadRequest, "Invalid verification code"},
		{"expired", "123456", 10*time.Minute + time.Second, http.StatusBadRequest, "Verification code has expired. Please request a new one."},
		{"missing code", "", 0, http.StatusBadRequest, "Email and code are required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, c, _ := newTestApp(t)
			server := MustNewServer(t, &a)
			defer server.Close()
			testutils.SetupUnverifiedUser(a.DB, "Ada", "ada@example.com", "123456", c.Now())
			c.Advance(tc.advance)

			req := testutils.MakeFormReq(server.URL, "POST", "/api/auth/verify-email", map[string][]string{
				"email": {"ada@example.com"},
				"code":  {tc.code},
			})
			res := testutils.HTTPDo(t, req)

			assertError(t, res, tc.statusCode, tc.message)
			assert.Equal(t, mustFindUser(t, a, "ada@example.com").EmailVerified, false, "user should stay unverified")
		})
	}

	t.Run("success", func(t *testing.T) {
		a, c, emails := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()
		testutils.SetupUnverifiedUser(a.DB, "Ada", "ada@example.com", "123456", c.Now())
		c.Advance(10 * time.Minute)

		req := testutils.MakeReq(server.URL, "POST", "/api/auth/verify-email", `{"email":"ADA@example.com","code":"123456"}`)
		req.Header.Set("Content-Type", "application/json")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")
		var body VerifyEmailResponse
		testutils.DecodeJSON(t, res, &body)
		assert.Equal(t, body.Success, true, "success mismatch")

		cookie := testutils.GetCookieByName(res.Cookies(), mw.SessionCookieName)
		if cookie == nil {
			t.Fatal("session cookie was not set")
		}
		assert.Equal(t, cookie.Value, body.Session.Key, "cookie and body session mismatch")
		assert.Equal(t, cookie.HttpOnly, true, "cookie should be http only")

		user := mustFindUser(t, a, "ada@example.com")
		assert.Equal(t, user.EmailVerified, true, "user should be verified")
		assert.Equal(t, user.VerifyCode.Valid, false, "code should be cleared")
		assert.Equal(t, user.VerifyExpiry == nil, true, "expiry should be cleared")

		a.Tasks.Wait()
		assert.Equal(t, len(emails.EmailsOfType(mailer.EmailTypeWelcome)), 1, "welcome email count mismatch")
	})

	t.Run("user not found", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		req := testutils.MakeReq(server.URL, "POST", "/api/auth/verify-email", `{"email":"nobody@example.com","code":"123456"}`)
		req.Header.Set("Content-Type", "application/json")
		res := testutils.HTTPDo(t, req)

		assertError(t, res, http.StatusNotFound, "User not found")
	})

	t.Run("already verified", func(t *testing.T) {
		a, _, emails := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()
		testutils.SetupUserData(a.DB, "Ada", "ada@example.com", "pass1234")

		req := testutils.MakeReq(server.URL, "POST", "/api/auth/verify-email", `{"email":"ada@example.com","code":"000000"}`)
		req.Header.Set("Content-Type", "application/json")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")
		a.Tasks.Wait()
		assert.Equal(t, len(emails.GetEmails()), 0, "no email should be sent")
	})

	t.Run("no code issued", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()
		user := testutils.SetupUserData(a.DB, "Ada", "ada@example.com", "pass1234")
		testutils.MustExec(t, a.DB.Model(&user).Update("email_verified", false), "preparing user")

		req := testutils.MakeReq(server.URL, "POST", "/api/auth/verify-email", `{"email":"ada@example.com","code":"123456"}`)
		req.Header.Set("Content-Type", "application/json")
		res := testutils.HTTPDo(t, req)

		assertError(t, res, http.StatusBadRequest, "No verification code found. Please request a new one.")
	})
}

func TestResendCode(t *testing.T) {
	t.Run("within cooldown", func(t *testing.T) {
		a, c, emails := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()
		testutils.SetupUnverifiedUser(a.DB, "Ada", "ada@example.com", "123456", c.Now())
		c.Advance(15 * time.Second)

		req := testutils.MakeReq(server.URL, "POST", "/api/auth/resend-code", `{"email":"ada@example.com"}`)
		req.Header.Set("Content-Type", "application/json")
		res := testutils.HTTPDo(t, req)

		assertError(t, res, http.StatusTooManyRequests, "Please wait 45 seconds before requesting a new code")
		assert.Equal(t, mustFindUser(t, a, "ada@example.com").VerifyCode.String, "123456", "code should not change")
		assert.Equal(t, len(emails.GetEmails()), 0, "no email should be sent")
	})

	t.Run("after cooldown", func(t *testing.T) {
		a, c, emails := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()
		testutils.SetupUnverifiedUser(a.DB, "Ada", "ada@example.com", "123456", c.Now())
		c.Advance(60 * time.Second)

		req := testutils.MakeReq(server.URL, "POST", "/api/auth/resend-code", `{"email":"ada@example.com"}`)
		req.Header.Set("Content-Type", "application/json")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")
		var body ResendCodeResponse
		testutils.DecodeJSON(t, res, &body)
		assert.Equal(t, body.Success, true, "success mismatch")
		assert.Equal(t, body.Message, "Verification code sent", "message mismatch")

		user := mustFindUser(t, a, "ada@example.com")
		assert.Equal(t, user.VerifyExpiry.Equal(c.Now().Add(10*time.Minute)), true, "expiry mismatch")
		assert.Equal(t, len(emails.EmailsOfType(mailer.EmailTypeVerification)), 1, "verification email count mismatch")
	})

	testCases := []struct {
		name       string
		payload    string
		statusCode int
		message    string
	}{
		{"missing email", `{"email":""}`, http.StatusBadRequest, "Email is required"},
		{"user not found", `{"email":"nobody@example.com"}`, http.StatusNotFound, "User not found"},
		{"already verified", `{"email":"grace@example.com"}`, http.StatusBadRequest, "Email is already verified"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, _, _ := newTestApp(t)
			server := MustNewServer(t, &a)
			defer server.Close()
			testutils.SetupUserData(a.DB, "Grace", "grace@example.com", "pass1234")

			req := testutils.MakeReq(server.URL, "POST", "/api/auth/resend-code", tc.payload)
			req.Header.Set("Content-Type", "application/json")
			res := testutils.HTTPDo(t, req)

			assertError(t, res, tc.statusCode, tc.message)
		})
	}
}

func TestSignIn(t *testing.T) {
	testutils.RunForFormAndJSON(t, "success", func(t *testing.T, kind testutils.PayloadKind) {
		a, _, _ := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()
		user := testutils.SetupUserData(a.DB, "Ada", "ada@example.com", "pass1234")

		req := testutils.MakePayloadReq(t, server.URL, "POST", "/api/auth/signin", kind, LoginForm{
			Email:    "ada@example.com",
			Password: "pass1234",
		})
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")
		var body SessionResponse
		testutils.DecodeJSON(t, res, &body)

		var session database.Session
		testutils.MustExec(t, a.DB.Where("key = ?", body.Session.Key).First(&session), "finding session")
		assert.Equal(t, session.UserID, user.ID, "session user mismatch")

		cookie := testutils.GetCookieByName(res.Cookies(), mw.SessionCookieName)
		if cookie == nil {
			t.Fatal("session cookie was not set")
		}
		assert.Equal(t, cookie.Value, session.Key, "cookie mismatch")
	})

	testCases := []struct {
		name       string
		email      string
		password   string
		statusCode int
		message    string
	}{
		{"wrong password", "ada@example.com", "wrongpass", http.StatusBadRequest, "Wrong email and password combination"},
		{"unknown user", "nobody@example.com", "pass1234", http.StatusBadRequest, "Wrong email and password combination"},
		{"unverified", "grace@example.com", "pass1234", http.StatusForbidden, "Please verify your email address before signing in"},
		{"missing password", "ada@example.com", "", http.StatusBadRequest, "Password is required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, c, _ := newTestApp(t)
			server := MustNewServer(t, &a)
			defer server.Close()
			testutils.SetupUserData(a.DB, "Ada", "ada@example.com", "pass1234")
			testutils.SetupUnverifiedUser(a.DB, "Grace", "grace@example.com", "123456", c.Now())

			req := testutils.MakeFormReq(server.URL, "POST", "/api/auth/signin", map[string][]string{
				"email":    {tc.email},
				"password": {tc.password},
			})
			res := testutils.HTTPDo(t, req)

			assertError(t, res, tc.statusCode, tc.message)

			var count int64
			testutils.MustExec(t, a.DB.Model(&database.Session{}).Count(&count), "counting sessions")
			assert.Equal(t, count, int64(0), "session count mismatch")
		})
	}
}

func TestSignOut(t *testing.T) {
	a, _, _ := newTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()
	user := testutils.SetupUserData(a.DB, "Ada", "ada@example.com", "pass1234")
	session := testutils.SetupSession(a.DB, user)

	req := testutils.MakeReq(server.URL, "POST", "/api/auth/signout", "")
	req.Header.Set("Authorization", "Bearer "+session.Key)
	res := testutils.HTTPDo(t, req)

	assert.StatusCodeEquals(t, res, http.StatusNoContent, "status code mismatch")

	var count int64
	testutils.MustExec(t, a.DB.Model(&database.Session{}).Where("key = ?", session.Key).Count(&count), "counting sessions")
	assert.Equal(t, count, int64(0), "session should be deleted")

	cookie := testutils.GetCookieByName(res.Cookies(), mw.SessionCookieName)
	if cookie == nil {
		t.Fatal("session cookie was not unset")
	}
	assert.Equal(t, cookie.Value, "", "cookie value mismatch")
}

func TestMe(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()
		user := testutils.SetupUserData(a.DB, "Ada", "ada@example.com", "pass1234")

		req := testutils.MakeReq(server.URL, "GET", "/api/auth/me", "")
		res := testutils.HTTPAuthDo(t, a.DB, req, user)

		assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")
		var body MeResponse
		testutils.DecodeJSON(t, res, &body)
		assert.Equal(t, body.User.UUID, user.UUID, "id mismatch")
		assert.Equal(t, body.User.EmailVerified, true, "emailVerified mismatch")
	})

	t.Run("cookie session", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()
		user := testutils.SetupUserData(a.DB, "Ada", "ada@example.com", "pass1234")
		session := testutils.SetupSession(a.DB, user)

		req := testutils.MakeReq(server.URL, "GET", "/api/auth/me", "")
		req.AddCookie(&http.Cookie{Name: mw.SessionCookieName, Value: session.Key})
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		req := testutils.MakeReq(server.URL, "GET", "/api/auth/me", "")
		res := testutils.HTTPDo(t, req)

		assertError(t, res, http.StatusUnauthorized, "Authentication required")
	})
}

// A user registers, lets the first code expire, waits out the resend
// cooldown, then verifies with the second code.
func TestRegistrationScenario(t *testing.T) {
	a, c, emails := newTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	post := func(path, payload string) *http.Response {
		req := testutils.MakeReq(server.URL, "POST", path, payload)
		req.Header.Set("Content-Type", "application/json")
		return testutils.HTTPDo(t, req)
	}

	res := post("/api/auth/register", `{"name":"Ada","email":"ada@example.com","password":"pass1234"}`)
	assert.StatusCodeEquals(t, res, http.StatusOK, "register status mismatch")
	res.Body.Close()
	first := mustFindUser(t, a, "ada@example.com").VerifyCode.String

	res = post("/api/auth/resend-code", `{"email":"ada@example.com"}`)
	assertError(t, res, http.StatusTooManyRequests, "Please wait 60 seconds before requesting a new code")

	c.Advance(11 * time.Minute)
	res = post("/api/auth/verify-email", fmt.Sprintf(`{"email":"ada@example.com","code":"%s"}`, first))
	assertError(t, res, http.StatusBadRequest, "Verification code has expired. Please request a new one.")

	res = post("/api/auth/resend-code", `{"email":"ada@example.com"}`)
	assert.StatusCodeEquals(t, res, http.StatusOK, "resend status mismatch")
	res.Body.Close()
	second := mustFindUser(t, a, "ada@example.com").VerifyCode.String

	if second != first {
		res = post("/api/auth/verify-email", fmt.Sprintf(`{"email":"ada@example.com","code":"%s"}`, first))
		assertError(t, res, http.StatusBadRequest, "Invalid verification code")
	}

	res = post("/api/auth/verify-email", fmt.Sprintf(`{"email":"ada@example.com","code":"%s"}`, second))
	assert.StatusCodeEquals(t, res, http.StatusOK, "verify status mismatch")
	var body VerifyEmailResponse
	testutils.DecodeJSON(t, res, &body)

	req := testutils.MakeReq(server.URL, "GET", "/api/auth/me", "")
	req.Header.Set("Authorization", "Bearer "+body.Session.Key)
	res = testutils.HTTPDo(t, req)
	assert.StatusCodeEquals(t, res, http.StatusOK, "me status mismatch")
	res.Body.Close()

	a.Tasks.Wait()
	assert.Equal(t, len(emails.EmailsOfType(mailer.EmailTypeVerification)), 2, "verification email count mismatch")
	assert.Equal(t, len(emails.EmailsOfType(mailer.EmailTypeWelcome)), 1, "welcome email count mismatch")
}
