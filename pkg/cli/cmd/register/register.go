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

// Package register implements the command that creates an account and
// verifies its email address
package register

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/config"
	"github.com/researchos/researchos/pkg/cli/context"
	"github.com/researchos/researchos/pkg/cli/infra"
	"github.com/researchos/researchos/pkg/cli/log"
	"github.com/researchos/researchos/pkg/cli/ui"
	"github.com/researchos/researchos/pkg/registration"
	"github.com/spf13/cobra"
)

var example = `
  researchos register`

// resendCommand, typed instead of a code, asks for a new code
const resendCommand = "resend"

// NewCmd returns a new register command
func NewCmd(ctx context.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create an account",
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

// prompter asks the questions of the wizard
type prompter interface {
	Input(message string) (string, error)
	Password(message string) (string, error)
	Choice(message string, options []string, defaultOption string) (string, error)
}

type terminalPrompter struct{}

func (terminalPrompter) Input(message string) (string, error) {
	var ret string
	err := ui.PromptInput(message, &ret)
	return ret, err
}

func (terminalPrompter) Password(message string) (string, error) {
	var ret string
	err := ui.PromptPassword(message, &ret)
	return ret, err
}

func (terminalPrompter) Choice(message string, options []string, defaultOption string) (string, error) {
	return ui.PromptChoice(message, options, defaultOption)
}

// askChoice asks for a list value and, for Other, the free text
func askChoice(p prompter, message string, options []string, current registration.Choice) (registration.Choice, error) {
	def := current.Value()
	if current.IsCustom() {
		def = registration.Other
	}

	v, err := p.Choice(message, options, def)
	if err != nil {
		return registration.Choice{}, err
	}
	if v != registration.Other {
		return registration.Selected(v), nil
	}

	text, err := p.Input(message + " (please specify)")
	if err != nil {
		return registration.Choice{}, err
	}

	return registration.Custom(text), nil
}

// askText asks for free text. An empty answer is no choice.
func askText(p prompter, message string) (registration.Choice, error) {
	text, err := p.Input(message)
	if err != nil {
		return registration.Choice{}, err
	}
	if strings.TrimSpace(text) == "" {
		return registration.Choice{}, nil
	}

	return registration.Custom(text), nil
}

func askAccount(p prompter, w *registration.Wizard) error {
	var err error
	a := &w.Account

	if a.Name, err = p.Input("full name"); err != nil {
		return err
	}
	if a.Email, err = p.Input("email"); err != nil {
		return err
	}
	if a.Password, err = p.Password("password (at least 8 characters)"); err != nil {
		return err
	}
	if a.ConfirmPassword, err = p.Password("confirm password"); err != nil {
		return err
	}

	return nil
}

func askAffiliation(p prompter, w *registration.Wizard) error {
	var err error
	a := &w.Affiliation

	if a.Country, err = askChoice(p, "country", registration.Countries, a.Country); err != nil {
		return err
	}

	if a.Country.Is(registration.India) {
		if a.State, err = askChoice(p, "state", registration.IndiaStates, a.State); err != nil {
			return err
		}
	} else if a.State, err = askText(p, "state or province (optional)"); err != nil {
		return err
	}

	if cities := a.CityOptions(); cities != nil {
		if a.City, err = askChoice(p, "city", cities, registration.Choice{}); err != nil {
			return err
		}
	} else if a.City, err = askText(p, "city (optional)"); err != nil {
		return err
	}

	if a.Institution, err = askText(p, "institution"); err != nil {
		return err
	}
	if a.Department, err = p.Input("department (optional)"); err != nil {
		return err
	}

	return nil
}

func askProfile(p prompter, w *registration.Wizard) error {
	var err error
	pr := &w.Profile

	if pr.Role, err = askChoice(p, "role", registration.Roles, pr.Role); err != nil {
		return err
	}
	if pr.ResearchArea, err = askChoice(p, "research area", registration.ResearchAreas, pr.ResearchArea); err != nil {
		return err
	}
	if pr.OrcidID, err = p.Input("ORCID iD (optional)"); err != nil {
		return err
	}

	return nil
}

// fillForm walks the form steps until the registration is submitted. A
// failing step is asked again.
func fillForm(p prompter, w *registration.Wizard) error {
	for w.Step() < registration.StepAwaitingVerification {
		var err error
		switch w.Step() {
		case registration.StepAccount:
			log.Plain("\nStep 1 of 3: account\n")
			err = askAccount(p, w)
		case registration.StepAffiliation:
			log.Plain("\nStep 2 of 3: affiliation\n")
			err = askAffiliation(p, w)
		case registration.StepResearchProfile:
			log.Plain("\nStep 3 of 3: research profile\n")
			err = askProfile(p, w)
		}
		if err != nil {
			return errors.Wrap(err, "getting user input")
		}

		step := w.Step()
		if err := w.Next(); err != nil {
			if errors.Is(err, registration.ErrBusy) {
				return err
			}
			log.Errorf("%s\n", w.Message())

			// the server rejected a valid form, most likely the account
			if step == registration.StepResearchProfile && w.Profile.Validate() == nil {
				w.Back()
				w.Back()
			}
		}
	}

	return nil
}

// verify asks for the emailed code until it is accepted
func verify(p prompter, w *registration.Wizard) error {
	log.Infof("a 6-digit code was sent to %s. Type '%s' to get a new one.\n", w.Submission().Email, resendCommand)

	for w.Step() == registration.StepAwaitingVerification {
		input, err := p.Input("verification code")
		if err != nil {
			return errors.Wrap(err, "getting user input")
		}

		if strings.EqualFold(strings.TrimSpace(input), resendCommand) {
			if err := w.Resend(); err != nil {
				log.Errorf("%s\n", w.Message())
				continue
			}
			log.Success("a new code is on its way\n")
			continue
		}

		w.EnterCode(input)
		if err := w.Verify(); err != nil {
			log.Errorf("%s\n", w.Message())
		}
	}

	return nil
}

// Do runs the registration wizard and saves the session issued on
// verification
func Do(ctx context.Ctx, p prompter) error {
	b := &apiBackend{ctx: ctx}
	w := registration.New(b, ctx.Clock)

	if err := fillForm(p, w); err != nil {
		return err
	}
	if err := verify(p, w); err != nil {
		return err
	}

	email := w.Submission().Email
	if err := config.SaveSession(ctx, email, b.session.Key, b.session.ExpiresAt.Unix()); err != nil {
		return errors.Wrap(err, "saving session")
	}

	return nil
}

func newRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := Do(ctx, terminalPrompter{}); err != nil {
			return errors.Wrap(err, "registering")
		}

		log.Success("email verified. You are signed in.\n")

		return nil
	}
}
