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

// Package verify implements the commands that finish the email verification
// of an account registered earlier
package verify

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/client"
	"github.com/researchos/researchos/pkg/cli/config"
	"github.com/researchos/researchos/pkg/cli/context"
	"github.com/researchos/researchos/pkg/cli/infra"
	"github.com/researchos/researchos/pkg/cli/log"
	"github.com/researchos/researchos/pkg/cli/ui"
	"github.com/spf13/cobra"
)

var verifyExample = `
  # verify with the code from the email
  researchos verify -e jane@uni.edu 123456

  # prompt for the code
  researchos verify -e jane@uni.edu`

var resendExample = `
  researchos resend -e jane@uni.edu`

// ErrEmailRequired is returned when no email is given and none is saved
var ErrEmailRequired = errors.New("email is required. Please pass --email")

var emailFlag string

// NewCmd returns a new verify command
func NewCmd(ctx context.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "verify [code]",
		Short:   "Verify the email address of a registered account",
		Example: verifyExample,
		Args:    cobra.MaximumNArgs(1),
		RunE:    newVerifyRun(ctx),
	}

	cmd.Flags().StringVarP(&emailFlag, "email", "e", "", "email address of the account")

	return cmd
}

// NewResendCmd returns a new resend command
func NewResendCmd(ctx context.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resend",
		Short:   "Send a new verification code",
		Example: resendExample,
		RunE:    newResendRun(ctx),
	}

	cmd.Flags().StringVarP(&emailFlag, "email", "e", "", "email address of the account")

	return cmd
}

func getEmail(ctx context.Ctx) (string, error) {
	email := strings.TrimSpace(emailFlag)
	if email == "" {
		email = ctx.Email
	}
	if email == "" {
		return "", ErrEmailRequired
	}

	return strings.ToLower(email), nil
}

// Do submits the code and saves the session the server issues
func Do(ctx context.Ctx, email, code string) error {
	resp, err := client.VerifyEmail(ctx, email, code)
	if err != nil {
		return errors.New(client.Message(err))
	}

	if err := config.SaveSession(ctx, email, resp.Session.Key, resp.Session.ExpiresAt.Unix()); err != nil {
		return errors.Wrap(err, "saving session")
	}

	return nil
}

// Resend asks for a new code and returns the message of the server
func Resend(ctx context.Ctx, email string) (string, error) {
	resp, err := client.ResendCode(ctx, email)
	if err != nil {
		return "", errors.New(client.Message(err))
	}

	return resp.Message, nil
}

func newVerifyRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		email, err := getEmail(ctx)
		if err != nil {
			return err
		}

		var code string
		if len(args) > 0 {
			code = args[0]
		} else if err := ui.PromptInput("verification code", &code); err != nil {
			return errors.Wrap(err, "getting user input")
		}

		if err := Do(ctx, email, strings.TrimSpace(code)); err != nil {
			return errors.Wrap(err, "verifying email")
		}

		log.Success("email verified. You are signed in.\n")

		return nil
	}
}

func newResendRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		email, err := getEmail(ctx)
		if err != nil {
			return err
		}

		msg, err := Resend(ctx, email)
		if err != nil {
			return errors.Wrap(err, "resending code")
		}

		if msg == "" {
			msg = "a new code is on its way"
		}
		log.Successf("%s\n", msg)

		return nil
	}
}
