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
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	pkgErrors "github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/helpers"
	"github.com/researchos/researchos/pkg/server/log"
	"github.com/researchos/researchos/pkg/server/verification"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength is the minimum length of a password
const MinPasswordLength = 8

var validate = validator.New()

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterParams is the registration payload. Profile fields are optional.
type RegisterParams struct {
	Name         string `validate:"required"`
	Email        string `validate:"required,email"`
	Password     string `validate:"min=8"`
	Institution  string
	Department   string
	Role         string
	ResearchArea string
	Country      string
	State        string
	City         string
	OrcidID      string
}

func (p RegisterParams) normalize() RegisterParams {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = NormalizeEmail(p.Email)
	p.Institution = strings.TrimSpace(p.Institution)
	p.Department = strings.TrimSpace(p.Department)
	p.Role = strings.TrimSpace(p.Role)
	p.ResearchArea = strings.TrimSpace(p.ResearchArea)
	p.Country = strings.TrimSpace(p.Country)
	p.State = strings.TrimSpace(p.State)
	p.City = strings.TrimSpace(p.City)
	p.OrcidID = strings.TrimSpace(p.OrcidID)

	return p
}

// validateRegistration returns the error of the first failing field in
// declaration order
func validateRegistration(p RegisterParams) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return pkgErrors.Wrap(err, "validating registration")
	}

	switch verrs[0].Field() {
	case "Name":
		return ErrNameRequired
	case "Email":
		return ErrEmailInvalid
	case "Password":
		return ErrPasswordTooShort
	}

	return pkgErrors.Wrap(err, "validating registration")
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", pkgErrors.Wrap(err, "hashing password")
	}

	return string(b), nil
}

func countUsersByEmail(tx *gorm.DB, email string) (int64, error) {
	var count int64
	if err := tx.Model(database.User{}).Where("LOWER(email) = ?", NormalizeEmail(email)).Count(&count).Error; err != nil {
		return 0, pkgErrors.Wrap(err, "counting user")
	}

	return count, nil
}

// Register creates an unverified user with a fresh verification code and
// sends the code. A delivery failure is logged and does not fail the
// registration.
func (a *App) Register(p RegisterParams) (database.User, error) {
	if a.DisableRegistration {
		return database.User{}, ErrRegistrationDisabled
	}

	p = p.normalize()
	if err := validateRegistration(p); err != nil {
		return database.User{}, err
	}

	hashedPassword, err := hashPassword(p.Password)
	if err != nil {
		return database.User{}, err
	}

	code, err := a.codes().Generate(a.Clock.Now())
	if err != nil {
		return database.User{}, pkgErrors.Wrap(err, "generating verification code")
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.User{}, err
	}

	tx := a.DB.Begin()

	count, err := countUsersByEmail(tx, p.Email)
	if err != nil {
		tx.Rollback()
		return database.User{}, err
	}
	if count > 0 {
		tx.Rollback()
		return database.User{}, ErrDuplicateEmail
	}

	user := database.User{
		UUID:          uuid,
		Name:          p.Name,
		Email:         p.Email,
		Password:      database.ToNullString(hashedPassword),
		EmailVerified: false,
		VerifyCode:    database.ToNullString(code.Value),
		VerifyExpiry:  &code.Expiry,
		CodeIssuedAt:  &code.IssuedAt,
		Institution:   p.Institution,
		Department:    p.Department,
		Role:          p.Role,
		ResearchArea:  p.ResearchArea,
		Country:       p.Country,
		State:         p.State,
		City:          p.City,
		OrcidID:       p.OrcidID,
	}
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return database.User{}, pkgErrors.Wrap(err, "saving user")
	}

	if err := tx.Commit().Error; err != nil {
		return database.User{}, pkgErrors.Wrap(err, "committing transaction")
	}

	a.deliverCode(user, code.Value)

	return user, nil
}

// VerifyEmail checks the submitted code. On a match the user becomes verified
// and the code is cleared. A user who is already verified is returned as is.
func (a *App) VerifyEmail(email, code string) (database.User, error) {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return database.User{}, ErrVerifyInputRequired
	}

	user, err := a.GetUserByEmail(email)
	if errors.Is(err, ErrNotFound) {
		return database.User{}, ErrUserNotFound
	} else if err != nil {
		return database.User{}, err
	}

	if user.EmailVerified {
		return user, nil
	}
	if !user.HasPendingCode() {
		return database.User{}, ErrNoCodeIssued
	}

	now := a.Clock.Now()
	if verification.IsExpired(*user.VerifyExpiry, now) {
		return database.User{}, ErrCodeExpired
	}
	if !verification.Matches(user.VerifyCode.String, code) {
		return database.User{}, ErrCodeMismatch
	}

	res := a.DB.Model(&database.User{}).
		Where("id = ? AND email_verified = ?", user.ID, false).
		Updates(map[string]interface{}{
			"email_verified": true,
			"verify_code":    nil,
			"verify_expiry":  nil,
			"code_issued_at": nil,
		})
	if res.Error != nil {
		return database.User{}, pkgErrors.Wrap(res.Error, "marking user verified")
	}

	user.EmailVerified = true
	user.VerifyCode = database.NullString{}
	user.VerifyExpiry = nil
	user.CodeIssuedAt = nil

	// a concurrent request already flipped the flag and sent the welcome email
	if res.RowsAffected == 0 {
		return user, nil
	}

	welcomed := user
	a.tasks().Go("welcome email", func() error {
		return a.SendWelcomeEmail(welcomed)
	})

	return user, nil
}

// codeIssuedAt returns when the outstanding code was issued. Rows written
// before the issue time was recorded fall back to the expiry.
func codeIssuedAt(user database.User) (time.Time, bool) {
	if user.CodeIssuedAt != nil {
		return *user.CodeIssuedAt, true
	}
	if user.VerifyExpiry != nil {
		return verification.IssuedAtFromExpiry(*user.VerifyExpiry), true
	}

	return time.Time{}, false
}

// ResendCode issues a new code unless the previous one was issued within
// the resend cooldown, in which case a *RateLimitError is returned.
func (a *App) ResendCode(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}

	user, err := a.GetUserByEmail(email)
	if errors.Is(err, ErrNotFound) {
		return ErrUserNotFound
	} else if err != nil {
		return err
	}

	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	now := a.Clock.Now()
	if issuedAt, ok := codeIssuedAt(user); ok {
		if remaining := verification.CooldownRemaining(issuedAt, now); remaining > 0 {
			return &RateLimitError{Remaining: remaining}
		}
	}

	code, err := a.codes().Generate(now)
	if err != nil {
		return pkgErrors.Wrap(err, "generating verification code")
	}

	if err := a.DB.Model(&user).Updates(map[string]interface{}{
		"verify_code":    code.Value,
		"verify_expiry":  code.Expiry,
		"code_issued_at": code.IssuedAt,
	}).Error; err != nil {
		return pkgErrors.Wrap(err, "saving verification code")
	}

	a.deliverCode(user, code.Value)

	return nil
}

// TouchLastLoginAt updates the last login timestamp
func (a *App) TouchLastLoginAt(user database.User, tx *gorm.DB) error {
	t := a.Clock.Now()
	if err := tx.Model(&user).Update("last_login_at", &t).Error; err != nil {
		return pkgErrors.Wrap(err, "updating last_login_at")
	}

	return nil
}

// CreateUser creates a user whose email is already verified. It is used by
// operators from the command line.
func (a *App) CreateUser(name, email, password string) (database.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return database.User{}, ErrEmailRequired
	}
	if len(password) < MinPasswordLength {
		return database.User{}, ErrPasswordTooShort
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return database.User{}, err
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.User{}, err
	}

	tx := a.DB.Begin()

	count, err := countUsersByEmail(tx, email)
	if err != nil {
		tx.Rollback()
		return database.User{}, err
	}
	if count > 0 {
		tx.Rollback()
		return database.User{}, ErrDuplicateEmail
	}

	user := database.User{
		UUID:          uuid,
		Name:          strings.TrimSpace(name),
		Email:         email,
		Password:      database.ToNullString(hashedPassword),
		EmailVerified: true,
	}
	if err = tx.Save(&user).Error; err != nil {
		tx.Rollback()
		return database.User{}, pkgErrors.Wrap(err, "saving user")
	}

	tx.Commit()

	return user, nil
}

// GetUserByEmail finds a user by email, ignoring case
func (a *App) GetUserByEmail(email string) (database.User, error) {
	var user database.User
	err := a.DB.Where("LOWER(email) = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	} else if err != nil {
		return user, pkgErrors.Wrap(err, "finding user")
	}

	return user, nil
}

// Authenticate authenticates a user
func (a *App) Authenticate(email, password string) (*database.User, error) {
	user, err := a.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}

	if !user.Password.Valid {
		return nil, ErrLoginInvalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password.String), []byte(password)); err != nil {
		return nil, ErrLoginInvalid
	}

	return &user, nil
}

// SignIn issues a session for a verified user
func (a *App) SignIn(user *database.User) (*database.Session, error) {
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	err := a.TouchLastLoginAt(*user, a.DB)
	if err != nil {
		log.ErrorWrap(err, "touching login timestamp")
	}

	session, err := a.CreateSession(user.ID)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "creating session")
	}

	return &session, nil
}

// MarkVerified verifies the user's email without a code and clears any
// outstanding code
func (a *App) MarkVerified(user database.User) error {
	if err := a.DB.Model(&user).Updates(map[string]interface{}{
		"email_verified": true,
		"verify_code":    nil,
		"verify_expiry":  nil,
		"code_issued_at": nil,
	}).Error; err != nil {
		return pkgErrors.Wrap(err, "marking user verified")
	}

	return nil
}

// UpdateUserPassword sets a new password and invalidates every session
func UpdateUserPassword(db *gorm.DB, user database.User, password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return err
	}

	tx := db.Begin()

	if err := tx.Model(&user).Update("password", database.ToNullString(hashedPassword)).Error; err != nil {
		tx.Rollback()
		return pkgErrors.Wrap(err, "updating password")
	}
	if err := deleteUserSessions(tx, user.ID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return pkgErrors.Wrap(err, "committing transaction")
	}

	return nil
}

// RemoveUser deletes a user and their sessions. Users who still own projects
// are not removed.
func (a *App) RemoveUser(email string) error {
	user, err := a.GetUserByEmail(email)
	if err != nil {
		return err
	}

	var count int64
	if err := a.DB.Model(&database.Project{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return pkgErrors.Wrap(err, "counting projects")
	}
	if count > 0 {
		return ErrUserHasExistingResources
	}

	tx := a.DB.Begin()

	if err := deleteUserSessions(tx, user.ID); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&user).Error; err != nil {
		tx.Rollback()
		return pkgErrors.Wrap(err, "deleting user")
	}

	if err := tx.Commit().Error; err != nil {
		return pkgErrors.Wrap(err, "committing transaction")
	}

	return nil
}
