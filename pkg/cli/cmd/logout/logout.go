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

// Package logout implements the command that signs out of the server
package logout

import (
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/client"
	"github.com/researchos/researchos/pkg/cli/config"
	"github.com/researchos/researchos/pkg/cli/context"
	"github.com/researchos/researchos/pkg/cli/infra"
	"github.com/researchos/researchos/pkg/cli/log"
	"github.com/spf13/cobra"
)

// ErrNotLoggedIn is an error for logging out when not logged in
var ErrNotLoggedIn = errors.New("not logged in")

var example = `
  researchos logout`

// NewCmd returns a new logout command
func NewCmd(ctx context.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logout",
		Short:   "Logout from the server",
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

// Do deletes the session on the server and forgets it locally. An expired
// session is forgotten even though the server no longer knows it.
func Do(ctx context.Ctx) error {
	if ctx.SessionKey == "" {
		return ErrNotLoggedIn
	}

	err := client.Signout(ctx)
	var httpErr *client.HTTPError
	if err != nil && !(errors.As(err, &httpErr) && httpErr.IsUnauthorized()) {
		return errors.Wrap(err, "requesting logout")
	}

	if err := config.ClearSession(ctx); err != nil {
		return errors.Wrap(err, "clearing session")
	}

	return nil
}

func newRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		err := Do(ctx)
		if err == ErrNotLoggedIn {
			log.Error("not logged in\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging out")
		}

		log.Success("logged out\n")

		return nil
	}
}
