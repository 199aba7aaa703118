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

// Package login implements the command that signs in to the server
package login

import (
	"net/url"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/client"
	"github.com/researchos/researchos/pkg/cli/config"
	"github.com/researchos/researchos/pkg/cli/context"
	"github.com/researchos/researchos/pkg/cli/infra"
	"github.com/researchos/researchos/pkg/cli/log"
	"github.com/researchos/researchos/pkg/cli/ui"
	"github.com/spf13/cobra"
)

var example = `
  researchos login`

var emailFlag, passwordFlag string

// NewCmd returns a new login command
func NewCmd(ctx context.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Login to the server",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&emailFlag, "email", "e", "", "email address")
	f.StringVarP(&passwordFlag, "password", "p", "", "password")

	return cmd
}

// Do signs in and saves the session
func Do(ctx context.Ctx, email, password string) error {
	resp, err := client.Signin(ctx, email, password)
	if err != nil {
		return errors.New(client.Message(err))
	}

	if err := config.SaveSession(ctx, email, resp.Session.Key, resp.Session.ExpiresAt.Unix()); err != nil {
		return errors.Wrap(err, "saving session")
	}

	return nil
}

func getEmail() (string, error) {
	if emailFlag != "" {
		return emailFlag, nil
	}

	var email string
	if err := ui.PromptInput("email", &email); err != nil {
		return "", errors.Wrap(err, "getting email input")
	}
	if email == "" {
		return "", errors.New("Email is empty")
	}

	return email, nil
}

func getPassword() (string, error) {
	if passwordFlag != "" {
		return passwordFlag, nil
	}

	var password string
	if err := ui.PromptPassword("password", &password); err != nil {
		return "", errors.Wrap(err, "getting password input")
	}
	if password == "" {
		return "", errors.New("Password is empty")
	}

	return password, nil
}

// getServerDisplayURL returns the origin of the server the API endpoint
// belongs to
func getServerDisplayURL(ctx context.Ctx) string {
	u, err := url.Parse(ctx.APIEndpoint)
	if err != nil {
		return ""
	}

	if u.Scheme == "" || u.Host == "" {
		return ""
	}

	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
}

func newRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		greeting := "Welcome to ResearchOS"
		if serverURL := getServerDisplayURL(ctx); serverURL != "" {
			greeting = greeting + " (" + serverURL + ")"
		}
		log.Plainf("%s\n", greeting)

		email, err := getEmail()
		if err != nil {
			return err
		}
		password, err := getPassword()
		if err != nil {
			return err
		}

		if err := Do(ctx, email, password); err != nil {
			return errors.Wrap(err, "logging in")
		}

		log.Success("logged in\n")

		return nil
	}
}
