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
	"fmt"
	"time"

	"github.com/researchos/researchos/pkg/server/verification"
)

// appError is an error whose message can be shown to the user
type appError string

func (e appError) Error() string {
	return string(e)
}

var (
	// ErrNotFound an error that indicates that the given resource is not found
	ErrNotFound appError = "not found"
	// ErrRegistrationDisabled is an error for disabled self-registration
	ErrRegistrationDisabled appError = "Registration is disabled"

	// ErrNameRequired is returned when registering without a name
	ErrNameRequired appError = "Name is required"
	// ErrEmailInvalid is returned for an email without the local@domain.tld shape
	ErrEmailInvalid appError = "Invalid email address"
	// ErrPasswordTooShort is returned for a password shorter than 8 characters
	ErrPasswordTooShort appError = "Password must be at least 8 characters"
	// ErrEmailRequired is returned when an email is missing
	ErrEmailRequired appError = "Email is required"
	// ErrPasswordRequired is returned when a password is missing
	ErrPasswordRequired appError = "Password is required"
	// ErrDuplicateEmail is returned when the email is taken, ignoring case
	ErrDuplicateEmail appError = "User with this email already exists"

	// ErrVerifyInputRequired is returned when email or code is missing
	ErrVerifyInputRequired appError = "Email and code are required"
	// ErrUserNotFound is returned when no user has the email
	ErrUserNotFound appError = "User not found"
	// ErrNoCodeIssued is returned when the user has no outstanding code
	ErrNoCodeIssued appError = "No verification code found. Please request a new one."
	// ErrCodeExpired is returned for a code past its expiry
	ErrCodeExpired appError = "Verification code has expired. Please request a new one."
	// ErrCodeMismatch is returned for a wrong code
	ErrCodeMismatch appError = "Invalid verification code"
	// ErrAlreadyVerified is returned when asking a code for a verified email
	ErrAlreadyVerified appError = "Email is already verified"

	// ErrLoginInvalid is an error for invalid login
	ErrLoginInvalid appError = "Wrong email and password combination"
	// ErrEmailNotVerified is returned when signing in before verifying the email
	ErrEmailNotVerified appError = "Please verify your email address before signing in"
	// ErrLoginRequired is an error for not authenticated
	ErrLoginRequired appError = "Authentication required"
	// ErrUserHasExistingResources is returned when removing a user who still owns projects
	ErrUserHasExistingResources appError = "User still has projects. Delete them first"

	// ErrProjectNameRequired is returned when a project has no name
	ErrProjectNameRequired appError = "Project name is required"
	// ErrProjectNotFound is returned for a missing project or one owned by someone else
	ErrProjectNotFound appError = "Project not found"
	// ErrNoteNotFound is returned for a missing note or one owned by someone else
	ErrNoteNotFound appError = "Note not found"
	// ErrBlockIDRequired is returned when a saved block has no id
	ErrBlockIDRequired appError = "Every block needs an id"
	// ErrDuplicateBlockID is returned when two saved blocks share an id
	ErrDuplicateBlockID appError = "Block ids must be unique"

	// ErrFileRequired is returned for an upload without a file
	ErrFileRequired appError = "No file provided"
	// ErrFileTooLarge is returned for an upload over MaxFileSize
	ErrFileTooLarge appError = "File exceeds the 25 MB limit"
	// ErrFileNotFound is returned for a missing file or one owned by someone else
	ErrFileNotFound appError = "File not found"

	// ErrTextRequired is returned when rephrasing empty text
	ErrTextRequired appError = "Text is required"
	// ErrMessagesRequired is returned when chatting without messages
	ErrMessagesRequired appError = "Messages are required"
	// ErrAssistantUnavailable is returned when no LLM is configured
	ErrAssistantUnavailable appError = "AI assistant is not configured"
)

// PublicMessage returns the message of the application error in the chain
// of err. Other errors have no message fit for users.
func PublicMessage(err error) (string, bool) {
	var ae appError
	if errors.As(err, &ae) {
		return string(ae), true
	}

	return "", false
}

// RateLimitError is returned when a code is requested within the resend cooldown
type RateLimitError struct {
	Remaining time.Duration
}

// Seconds returns the remaining wait rounded up to whole seconds
func (e *RateLimitError) Seconds() int {
	return verification.CeilSeconds(e.Remaining)
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Please wait %d seconds before requesting a new code", e.Seconds())
}
