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

// Package registration drives a new user through the sign-up wizard and
// email verification
package registration

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/clock"
)

// Step is a state of the wizard
type Step int

const (
	// StepAccount collects name, email and password
	StepAccount Step = iota
	// StepAffiliation collects location and institution
	StepAffiliation
	// StepResearchProfile collects role and research area
	StepResearchProfile
	// StepAwaitingVerification waits for the emailed code
	StepAwaitingVerification
	// StepVerified is terminal
	StepVerified
)

var stepNames = map[Step]string{
	StepAccount:              "account",
	StepAffiliation:          "affiliation",
	StepResearchProfile:      "research profile",
	StepAwaitingVerification: "awaiting verification",
	StepVerified:             "verified",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}

	return fmt.Sprintf("step(%d)", int(s))
}

const (
	// CodeLength is the number of digits in a verification code
	CodeLength = 6
	// ResendCooldown is the wait between two codes
	ResendCooldown = 60 * time.Second
)

var (
	// ErrBusy is returned while a request to the server is in flight
	ErrBusy = errors.New("Please wait for the current request to finish")
	// ErrWrongStep is returned for an action not available at the current step
	ErrWrongStep = errors.New("This action is not available at the current step")
)

// CooldownError is returned when a new code is requested too early
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("Please wait %d seconds before requesting a new code", Seconds(e.Remaining))
}

// Seconds rounds a duration up to whole seconds
func Seconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// Submission is the profile sent to the server with every "Other" resolved
type Submission struct {
	Name         string
	Email        string
	Password     string
	Institution  string
	Department   string
	Role         string
	ResearchArea string
	Country      string
	State        string
	City         string
	OrcidID      string
}

// Backend is the server side of the wizard
type Backend interface {
	Register(s Submission) error
	VerifyEmail(email, code string) error
	ResendCode(email string) error
}

// Wizard is the registration state machine. Exactly one error message is
// current at a time.
type Wizard struct {
	Account     Account
	Affiliation Affiliation
	Profile     ResearchProfile

	backend Backend
	clock   clock.Clock

	mu         sync.Mutex
	step       Step
	message    string
	busy       bool
	code       string
	lastIssued time.Time
}

// New returns a wizard at the first step. The country defaults to India
// and the state to Tamil Nadu.
func New(b Backend, c clock.Clock) *Wizard {
	return &Wizard{
		backend: b,
		clock:   c,
		Affiliation: Affiliation{
			Country: Selected(India),
			State:   Selected(TamilNadu),
		},
	}
}

// Step returns the current step
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.step
}

// Message returns the current error message, or an empty string
func (w *Wizard) Message() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.message
}

// Busy reports whether a request is in flight
func (w *Wizard) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.busy
}

// fail records err as the current message and returns it
func (w *Wizard) fail(err error) error {
	w.message = err.Error()
	return err
}

// Next validates the current form step and moves to the following one. On
// the research profile step it submits the registration.
func (w *Wizard) Next() error {
	if w.Step() == StepResearchProfile {
		return w.Submit()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var err error
	switch w.step {
	case StepAccount:
		err = w.Account.Validate()
	case StepAffiliation:
		err = w.Affiliation.Validate()
	default:
		return ErrWrongStep
	}
	if err != nil {
		return w.fail(err)
	}

	w.message = ""
	w.step++

	return nil
}

// Back returns to the previous form step
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step > StepAccount && w.step <= StepResearchProfile {
		w.step--
	}
	w.message = ""
}

func (w *Wizard) email() string {
	return strings.ToLower(strings.TrimSpace(w.Account.Email))
}

// Submission resolves the collected fields
func (w *Wizard) Submission() Submission {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.submission()
}

func (w *Wizard) submission() Submission {
	return Submission{
		Name:         strings.TrimSpace(w.Account.Name),
		Email:        w.email(),
		Password:     w.Account.Password,
		Institution:  w.Affiliation.Institution.Value(),
		Department:   strings.TrimSpace(w.Affiliation.Department),
		Role:         w.Profile.Role.Value(),
		ResearchArea: w.Profile.ResearchArea.Value(),
		Country:      w.Affiliation.Country.Value(),
		State:        w.Affiliation.state(),
		City:         w.Affiliation.city(),
		OrcidID:      strings.TrimSpace(w.Profile.OrcidID),
	}
}

// begin marks a request in flight. The caller must hold the lock.
func (w *Wizard) begin() error {
	if w.busy {
		return ErrBusy
	}
	w.busy = true

	return nil
}

// Submit validates every form step and registers the user. The wizard then
// waits for the verification code.
func (w *Wizard) Submit() error {
	w.mu.Lock()
	if w.step > StepResearchProfile {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if err := w.begin(); err != nil {
		w.mu.Unlock()
		return err
	}

	for _, v := range []interface{ Validate() error }{w.Account, w.Affiliation, w.Profile} {
		if err := v.Validate(); err != nil {
			w.busy = false
			err = w.fail(err)
			w.mu.Unlock()
			return err
		}
	}
	w.message = ""
	s := w.submission()
	w.mu.Unlock()

	err := w.backend.Register(s)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		return w.fail(err)
	}

	w.step = StepAwaitingVerification
	w.lastIssued = w.clock.Now()

	return nil
}

// EnterCode keeps the digits of input, up to CodeLength, as the code and
// returns it
func (w *Wizard) EnterCode(input string) string {
	var b strings.Builder
	for _, r := range input {
		if b.Len() == CodeLength {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.code = b.String()

	return w.code
}

// Code returns the entered code
func (w *Wizard) Code() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.code
}

// Verify submits the entered code
func (w *Wizard) Verify() error {
	w.mu.Lock()
	if w.step != StepAwaitingVerification {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if len(w.code) != CodeLength {
		err := w.fail(ErrCodeIncomplete)
		w.mu.Unlock()
		return err
	}
	if err := w.begin(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.message = ""
	email, code := w.email(), w.code
	w.mu.Unlock()

	err := w.backend.VerifyEmail(email, code)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		return w.fail(err)
	}

	w.step = StepVerified

	return nil
}

// CooldownRemaining returns how long until a new code can be requested
func (w *Wizard) CooldownRemaining() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.cooldownRemaining()
}

func (w *Wizard) cooldownRemaining() time.Duration {
	if w.lastIssued.IsZero() {
		return 0
	}

	remaining := w.lastIssued.Add(ResendCooldown).Sub(w.clock.Now())
	if remaining < 0 {
		return 0
	}

	return remaining
}

// Resend asks the server for a new code. The server enforces the cooldown
// too, so a rejection there is reported the same way.
func (w *Wizard) Resend() error {
	w.mu.Lock()
	if w.step != StepAwaitingVerification {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if remaining := w.cooldownRemaining(); remaining > 0 {
		err := w.fail(&CooldownError{Remaining: remaining})
		w.mu.Unlock()
		return err
	}
	if err := w.begin(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.message = ""
	email := w.email()
	w.mu.Unlock()

	err := w.backend.ResendCode(email)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		return w.fail(err)
	}

	w.code = ""
	w.lastIssued = w.clock.Now()

	return nil
}
