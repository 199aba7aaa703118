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

package app

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/assert"
	"github.com/researchos/researchos/pkg/clock"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/mailer"
	"github.com/researchos/researchos/pkg/server/testutils"
	"github.com/researchos/researchos/pkg/server/verification"
	"golang.org/x/crypto/bcrypt"
)

// seqCodes issues the given code values in turn
type seqCodes struct {
	values []string
	n      int
}

func (s *seqCodes) Generate(now time.Time) (verification.Code, error) {
	v := s.values[s.n%len(s.values)]
	s.n++

	return verification.Code{
		Value:    v,
		IssuedAt: now,
		Expiry:   verification.ExpiryFor(now),
	}, nil
}

func newTestApp(t *testing.T, codes ...string) (App, *clock.Mock, *testutils.MockEmailbackendImplementation) {
	db := testutils.InitMemoryDB(t)
	c := clock.NewMock()
	emails := &testutils.MockEmailbackendImplementation{}

	a := NewTest()
	a.DB = db
	a.Clock = c
	a.EmailBackend = emails
	if len(codes) > 0 {
		a.Codes = &seqCodes{values: codes}
	}

	return a, c, emails
}

func mustGetUser(t *testing.T, a App, email string) database.User {
	user, err := a.GetUserByEmail(email)
	if err != nil {
		t.Fatal(errors.Wrap(err, "finding user"))
	}

	return user
}

func TestRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		a, c, emails := newTestApp(t, "482913")

		user, err := a.Register(RegisterParams{
			Name:        " Dr. Jane Smith ",
			Email:       " Jane@Uni.EDU ",
			Password:    "longenough1",
			Institution: "IIT Madras",
			Country:     "India",
			State:       "Tamil Nadu",
			City:        "Chennai",
		})
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, user.Name, "Dr. Jane Smith", "name mismatch")
		assert.Equal(t, user.Email, "jane@uni.edu", "email mismatch")

		var count int64
		testutils.MustExec(t, a.DB.Model(&database.User{}).Count(&count), "counting users")
		assert.Equal(t, count, int64(1), "user count mismatch")

		got := mustGetUser(t, a, "jane@uni.edu")
		assert.Equal(t, got.EmailVerified, false, "email verified mismatch")
		assert.Equal(t, got.VerifyCode.String, "482913", "code mismatch")
		assert.Equal(t, got.VerifyExpiry.Equal(c.Now().Add(10*time.Minute)), true, "expiry mismatch")
		assert.Equal(t, got.CodeIssuedAt.Equal(c.Now()), true, "issued at mismatch")
		assert.Equal(t, got.Institution, "IIT Madras", "institution mismatch")
		assert.Equal(t, got.City, "Chennai", "city mismatch")

		passwordErr := bcrypt.CompareHashAndPassword([]byte(got.Password.String), []byte("longenough1"))
		assert.Equal(t, passwordErr, nil, "password mismatch")

		sent := emails.EmailsOfType(mailer.EmailTypeVerification)
		assert.Equal(t, len(sent), 1, "verification email count mismatch")
		assert.DeepEqual(t, sent[0].To, []string{"jane@uni.edu"}, "recipient mismatch")
		assert.Equal(t, sent[0].Data.(mailer.VerificationTmplData).Code, "482913", "emailed code mismatch")
		assert.Equal(t, sent[0].Data.(mailer.VerificationTmplData).ExpiresInMinutes, 10, "expiry minutes mismatch")
	})

	t.Run("duplicate email ignoring case", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		testutils.SetupUserData(a.DB, "Jane", "jane@uni.edu", "pass1234")

		_, err := a.Register(RegisterParams{Name: "Other Jane", Email: "JANE@uni.edu", Password: "longenough1"})
		assert.Equal(t, err, ErrDuplicateEmail, "error mismatch")

		var count int64
		testutils.MustExec(t, a.DB.Model(&database.User{}).Count(&count), "counting users")
		assert.Equal(t, count, int64(1), "user count mismatch")
	})

	t.Run("delivery failure does not fail registration", func(t *testing.T) {
		a, _, emails := newTestApp(t)
		emails.Err = errors.New("smtp down")

		if _, err := a.Register(RegisterParams{Name: "Jane", Email: "jane@uni.edu", Password: "longenough1"}); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		got := mustGetUser(t, a, "jane@uni.edu")
		assert.Equal(t, got.HasPendingCode(), true, "code was not persisted")
	})

	t.Run("registration disabled", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		a.DisableRegistration = true

		_, err := a.Register(RegisterParams{Name: "Jane", Email: "jane@uni.edu", Password: "longenough1"})
		assert.Equal(t, err, ErrRegistrationDisabled, "error mismatch")
	})

	testCases := []struct {
		name   string
		params RegisterParams
		want   error
	}{
		{"missing name", RegisterParams{Name: "  ", Email: "jane@uni.edu", Password: "longenough1"}, ErrNameRequired},
		{"missing email", RegisterParams{Name: "Jane", Email: "", Password: "longenough1"}, ErrEmailInvalid},
		{"invalid email", RegisterParams{Name: "Jane", Email: "jane@", Password: "longenough1"}, ErrEmailInvalid},
		{"short password", RegisterParams{Name: "Jane", Email: "jane@uni.edu", Password: "short"}, ErrPasswordTooShort},
		{"first failing field wins", RegisterParams{Name: "", Email: "bad", Password: "x"}, ErrNameRequired},
		{"email before password", RegisterParams{Name: "Jane", Email: "bad", Password: "x"}, ErrEmailInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, _, emails := newTestApp(t)

			_, err := a.Register(tc.params)
			assert.Equal(t, err, tc.want, "error mismatch")

			var count int64
			testutils.MustExec(t, a.DB.Model(&database.User{}).Count(&count), "counting users")
			assert.Equal(t, count, int64(0), "user count mismatch")
			assert.Equal(t, len(emails.GetEmails()), 0, "email count mismatch")
		})
	}
}

func TestVerifyEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		a, c, emails := newTestApp(t)
		testutils.SetupUnverifiedUser(a.DB, "Jane", "jane@uni.edu", "123456", c.Now())

		user, err := a.VerifyEmail("Jane@uni.edu", "123456")
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}
		a.Tasks.Wait()

		assert.Equal(t, user.EmailVerified, true, "returned user is not verified")

		got := mustGetUser(t, a, "jane@uni.edu")
		assert.Equal(t, got.EmailVerified, true, "email verified mismatch")
		assert.Equal(t, got.VerifyCode.Valid, false, "code was not cleared")
		assert.Equal(t, got.VerifyExpiry == nil, true, "expiry was not cleared")
		assert.Equal(t, got.CodeIssuedAt == nil, true, "issued at was not cleared")

		welcome := emails.EmailsOfType(mailer.EmailTypeWelcome)
		assert.Equal(t, len(welcome), 1, "welcome email count mismatch")
		assert.DeepEqual(t, welcome[0].To, []string{"jane@uni.edu"}, "recipient mismatch")
	})

	t.Run("second call short-circuits", func(t *testing.T) {
		a, c, emails := newTestApp(t)
		testutils.SetupUnverifiedUser(a.DB, "Jane", "jane@uni.edu", "123456", c.Now())

		if _, err := a.VerifyEmail("jane@uni.edu", "123456"); err != nil {
			t.Fatal(errors.Wrap(err, "first call"))
		}
		user, err := a.VerifyEmail("jane@uni.edu", "123456")
		if err != nil {
			t.Fatal(errors.Wrap(err, "second call"))
		}
		a.Tasks.Wait()

		assert.Equal(t, user.EmailVerified, true, "email verified mismatch")
		assert.Equal(t, len(emails.EmailsOfType(mailer.EmailTypeWelcome)), 1, "welcome email sent more than once")
	})

	t.Run("valid at the exact expiry", func(t *testing.T) {
		a, c, _ := newTestApp(t)
		testutils.SetupUnverifiedUser(a.DB, "Jane", "jane@uni.edu", "123456", c.Now())

		c.Advance(10 * time.Minute)

		if _, err := a.VerifyEmail("jane@uni.edu", "123456"); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}
	})

	t.Run("expired", func(t *testing.T) {
		a, c, _ := newTestApp(t)
		testutils.SetupUnverifiedUser(a.DB, "Jane", "jane@uni.edu", "123456", c.Now())

		c.Advance(10*time.Minute + time.Second)

		_, err := a.VerifyEmail("jane@uni.edu", "123456")
		assert.Equal(t, err, ErrCodeExpired, "error mismatch")
		assert.Equal(t, mustGetUser(t, a, "jane@uni.edu").EmailVerified, false, "email verified mismatch")
	})

	t.Run("expired takes precedence over mismatch", func(t *testing.T) {
		a, c, _ := newTestApp(t)
		testutils.SetupUnverifiedUser(a.DB, "Jane", "jane@uni.edu", "123456", c.Now())

		c.Advance(time.Hour)

		_, err := a.VerifyEmail("jane@uni.edu", "000000")
		assert.Equal(t, err, ErrCodeExpired, "error mismatch")
	})

	t.Run("mismatch", func(t *testing.T) {
		a, c, _ := newTestApp(t)
		testutils.SetupUnverifiedUser(a.DB, "Jane", "jane@uni.edu", "123456", c.Now())

		_, err := a.VerifyEmail("jane@uni.edu", "654321")
		assert.Equal(t, err, ErrCodeMismatch, "error mismatch")

		got := mustGetUser(t, a, "jane@uni.edu")
		assert.Equal(t, got.EmailVerified, false, "email verified mismatch")
		assert.Equal(t, got.VerifyCode.String, "123456", "code should be kept")
	})

	t.Run("no code issued", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		user := testutils.SetupUserData(a.DB, "Jane", "jane@uni.edu", "pass1234")
		testutils.MustExec(t, a.DB.Model(&user).Update("email_verified", false), "preparing user")

		_, err := a.VerifyEmail("jane@uni.edu", "123456")
		assert.Equal(t, err, ErrNoCodeIssued, "error mismatch")
	})

	t.Run("user not found", func(t *testing.T) {
		a, _, _ := newTestApp(t)

		_, err := a.VerifyEmail("nobody@uni.edu", "123456")
		assert.Equal(t, err, ErrUserNotFound, "error mismatch")
	})

	t.Run("missing fields", func(t *testing.T) {
		a, _, _ := newTestApp(t)

		_, err := a.VerifyEmail("", "123456")
		assert.Equal(t, err, ErrVerifyInputRequired, "error mismatch")
		_, err = a.VerifyEmail("jane@uni.edu", " ")
		assert.Equal(t, err, ErrVerifyInputRequired, "error mismatch")
	})

	t.Run("welcome email failure does not fail verification", func(t *testing.T) {
		a, c, emails := newTestApp(t)
		emails.Err = errors.New("smtp down")
		testutils.SetupUnverifiedUser(a.DB, "Jane", "jane@uni.edu", "123456", c.Now())

		if _, err := a.VerifyEmail("jane@uni.edu", "123456"); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}
		a.Tasks.Wait()

		assert.Equal(t, mustGetUser(t, a, "jane@uni.edu").EmailVerified, true, "email verified mismatch")
	})
}

func TestResendCode(t *testing.T) {
	t.Run("within cooldown", func(t *testing.T) {
		a, c, _ := newTestApp(t)
		testutils.SetupUnverifiedUser(a.DB, "Jane", "jane@uni.edu", "123456", c.Now())

		c.Advance(15 * time.Second)

		err := a.ResendCode("jane@uni.edu")

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			t.Fatalf("expected a RateLimitError, got %v", err)
		}
		assert.Equal(t, rl.Seconds(), 45, "remaining seconds mismatch")
		assert.Equal(t, rl.Error(), "Please wait 45 seconds before requesting a new code", "message mismatch")
	})

	t.Run("remaining seconds round up", func(t *testing.T) {
		a, c, _ := newTestApp(t)
		testutils.SetupUnverifiedUser(a.DB, "Jane", "jane@uni.edu", "123456", c.Now())

		c.Advance(59*time.Second + 100*time.Millisecond)

		err := a.ResendCode("jane@uni.edu")

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			t.Fatalf("expected a RateLimitError, got %v", err)
		}
		assert.Equal(t, rl.Seconds(), 1, "remaining seconds mismatch")
	})

	t.Run("after cooldown", func(t *testing.T) {
		a, c, emails := newTestApp(t, "777777")
		testutils.SetupUnverifiedUser(a.DB, "Jane", "jane@uni.edu", "123456", c.Now())

		c.Advance(60 * time.Second)

		if err := a.ResendCode("jane@uni.edu"); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		got := mustGetUser(t, a, "jane@uni.edu")
		assert.Equal(t, got.VerifyCode.String, "777777", "code mismatch")
		assert.Equal(t, got.VerifyExpiry.Equal(c.Now().Add(10*time.Minute)), true, "expiry mismatch")
		assert.Equal(t, got.CodeIssuedAt.Equal(c.Now()), true, "issued at mismatch")

		sent := emails.EmailsOfType(mailer.EmailTypeVerification)
		assert.Equal(t, len(sent), 1, "email count mismatch")
		assert.Equal(t, sent[0].Data.(mailer.VerificationTmplData).Code, "777777", "emailed code mismatch")
	})

	t.Run("legacy row without issue time", func(t *testing.T) {
		a, c, _ := newTestApp(t)
		user := testutils.SetupUnverifiedUser(a.DB, "Jane", "jane@uni.edu", "123456", c.Now())
		testutils.MustExec(t, a.DB.Model(&user).Update("code_issued_at", nil), "clearing issued at")

		c.Advance(30 * time.Second)

		err := a.ResendCode("jane@uni.edu")

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			t.Fatalf("expected a RateLimitError, got %v", err)
		}
		assert.Equal(t, rl.Seconds(), 30, "remaining seconds mismatch")
	})

	t.Run("no outstanding code", func(t *testing.T) {
		a, _, _ := newTestApp(t, "222222")
		user := testutils.SetupUserData(a.DB, "Jane", "jane@uni.edu", "pass1234")
		testutils.MustExec(t, a.DB.Model(&user).Update("email_verified", false), "preparing user")

		if err := a.ResendCode("jane@uni.edu"); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}
		assert.Equal(t, mustGetUser(t, a, "jane@uni.edu").VerifyCode.String, "222222", "code mismatch")
	})

	t.Run("already verified", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		testutils.SetupUserData(a.DB, "Jane", "jane@uni.edu", "pass1234")

		assert.Equal(t, a.ResendCode("jane@uni.edu"), ErrAlreadyVerified, "error mismatch")
	})

	t.Run("user not found", func(t *testing.T) {
		a, _, _ := newTestApp(t)

		assert.Equal(t, a.ResendCode("nobody@uni.edu"), ErrUserNotFound, "error mismatch")
	})

	t.Run("missing email", func(t *testing.T) {
		a, _, _ := newTestApp(t)

		assert.Equal(t, a.ResendCode("  "), ErrEmailRequired, "error mismatch")
	})

	t.Run("delivery failure still rotates the code", func(t *testing.T) {
		a, c, emails := newTestApp(t, "333333")
		testutils.SetupUnverifiedUser(a.DB, "Jane", "jane@uni.edu", "123456", c.Now())
		emails.Err = errors.New("smtp down")

		c.Advance(2 * time.Minute)

		if err := a.ResendCode("jane@uni.edu"); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}
		assert.Equal(t, mustGetUser(t, a, "jane@uni.edu").VerifyCode.String, "333333", "code mismatch")
	})
}

func TestRegistrationScenario(t *testing.T) {
	a, c, _ := newTestApp(t, "111111", "222222")

	user, err := a.Register(RegisterParams{Name: "Dr. Jane Smith", Email: "jane@uni.edu", Password: "longenough1"})
	if err != nil {
		t.Fatal(errors.Wrap(err, "registering"))
	}
	assert.Equal(t, user.EmailVerified, false, "new user should need verification")

	err = a.ResendCode("jane@uni.edu")
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected a RateLimitError, got %v", err)
	}
	assert.Equal(t, rl.Seconds(), 60, "remaining seconds mismatch")

	c.Advance(61 * time.Second)

	if err := a.ResendCode("jane@uni.edu"); err != nil {
		t.Fatal(errors.Wrap(err, "resending"))
	}
	assert.NotEqual(t, mustGetUser(t, a, "jane@uni.edu").VerifyCode.String, "111111", "code was not rotated")

	_, err = a.VerifyEmail("jane@uni.edu", "111111")
	assert.Equal(t, err, ErrCodeMismatch, "old code should not verify")

	verified, err := a.VerifyEmail("jane@uni.edu", "222222")
	if err != nil {
		t.Fatal(errors.Wrap(err, "verifying"))
	}
	a.Tasks.Wait()
	assert.Equal(t, verified.EmailVerified, true, "user should be verified")

	session, err := a.SignIn(&verified)
	if err != nil {
		t.Fatal(errors.Wrap(err, "signing in"))
	}
	assert.Equal(t, session.UserID, verified.ID, "session user mismatch")
}

func TestCreateUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		a, _, _ := newTestApp(t)

		if _, err := a.CreateUser("Alice", "Alice@Example.com", "pass1234"); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		got := mustGetUser(t, a, "alice@example.com")
		assert.Equal(t, got.Email, "alice@example.com", "email mismatch")
		assert.Equal(t, got.Name, "Alice", "name mismatch")
		assert.Equal(t, got.EmailVerified, true, "operator created users are verified")

		passwordErr := bcrypt.CompareHashAndPassword([]byte(got.Password.String), []byte("pass1234"))
		assert.Equal(t, passwordErr, nil, "password mismatch")
	})

	t.Run("duplicate email", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "somepassword")

		_, err := a.CreateUser("Alice", "alice@example.com", "newpassword")
		assert.Equal(t, err, ErrDuplicateEmail, "error mismatch")

		var userCount int64
		testutils.MustExec(t, a.DB.Model(&database.User{}).Count(&userCount), "counting user")
		assert.Equal(t, userCount, int64(1), "user count mismatch")
	})

	t.Run("short password", func(t *testing.T) {
		a, _, _ := newTestApp(t)

		_, err := a.CreateUser("Alice", "alice@example.com", "short")
		assert.Equal(t, err, ErrPasswordTooShort, "error mismatch")
	})
}

func TestAuthenticateAndSignIn(t *testing.T) {
	a, c, _ := newTestApp(t)
	testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "pass1234")
	testutils.SetupUnverifiedUser(a.DB, "Bob", "bob@example.com", "123456", c.Now())

	t.Run("success", func(t *testing.T) {
		user, err := a.Authenticate("ALICE@example.com", "pass1234")
		if err != nil {
			t.Fatal(errors.Wrap(err, "authenticating"))
		}

		session, err := a.SignIn(user)
		if err != nil {
			t.Fatal(errors.Wrap(err, "signing in"))
		}
		assert.Equal(t, session.ExpiresAt.Equal(c.Now().Add(SessionTTL)), true, "session expiry mismatch")
		assert.NotEqual(t, session.Key, "", "session key is empty")

		got := mustGetUser(t, a, "alice@example.com")
		assert.Equal(t, got.LastLoginAt.Equal(c.Now()), true, "last login mismatch")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := a.Authenticate("alice@example.com", "wrongpass")
		assert.Equal(t, err, ErrLoginInvalid, "error mismatch")
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := a.Authenticate("nobody@example.com", "pass1234")
		assert.Equal(t, err, ErrNotFound, "error mismatch")
	})

	t.Run("unverified user cannot get a session", func(t *testing.T) {
		user, err := a.Authenticate("bob@example.com", "pass1234")
		if err != nil {
			t.Fatal(errors.Wrap(err, "authenticating"))
		}

		_, err = a.SignIn(user)
		assert.Equal(t, err, ErrEmailNotVerified, "error mismatch")

		var count int64
		testutils.MustExec(t, a.DB.Model(&database.Session{}).Where("user_id = ?", user.ID).Count(&count), "counting sessions")
		assert.Equal(t, count, int64(0), "session count mismatch")
	})
}

func TestMarkVerified(t *testing.T) {
	a, c, _ := newTestApp(t)
	user := testutils.SetupUnverifiedUser(a.DB, "Bob", "bob@example.com", "123456", c.Now())

	if err := a.MarkVerified(user); err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	got := mustGetUser(t, a, "bob@example.com")
	assert.Equal(t, got.EmailVerified, true, "email verified mismatch")
	assert.Equal(t, got.HasPendingCode(), false, "code was not cleared")
}

func TestUpdateUserPassword(t *testing.T) {
	a, _, _ := newTestApp(t)
	user := testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "oldpassword")
	testutils.SetupSession(a.DB, user)

	if err := UpdateUserPassword(a.DB, user, "newpassword"); err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	if _, err := a.Authenticate("alice@example.com", "newpassword"); err != nil {
		t.Fatal(errors.Wrap(err, "authenticating with the new password"))
	}

	var count int64
	testutils.MustExec(t, a.DB.Model(&database.Session{}).Count(&count), "counting sessions")
	assert.Equal(t, count, int64(0), "sessions were not invalidated")

	assert.Equal(t, UpdateUserPassword(a.DB, user, "short"), ErrPasswordTooShort, "error mismatch")
}

func TestRemoveUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		user := testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "pass1234")
		testutils.SetupSession(a.DB, user)

		if err := a.RemoveUser("alice@example.com"); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		var userCount, sessionCount int64
		testutils.MustExec(t, a.DB.Model(&database.User{}).Count(&userCount), "counting users")
		testutils.MustExec(t, a.DB.Model(&database.Session{}).Count(&sessionCount), "counting sessions")
		assert.Equal(t, userCount, int64(0), "user count mismatch")
		assert.Equal(t, sessionCount, int64(0), "session count mismatch")
	})

	t.Run("has projects", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		user := testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "pass1234")
		testutils.SetupProjectData(a.DB, user, "Corrosion study")

		assert.Equal(t, a.RemoveUser("alice@example.com"), ErrUserHasExistingResources, "error mismatch")
	})

	t.Run("not found", func(t *testing.T) {
		a, _, _ := newTestApp(t)

		assert.Equal(t, a.RemoveUser("nobody@example.com"), ErrNotFound, "error mismatch")
	})
}
