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

// Package notes implements the commands that list and create the notes of
// a project
package notes

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/client"
	"github.com/researchos/researchos/pkg/cli/context"
	"github.com/researchos/researchos/pkg/cli/infra"
	"github.com/researchos/researchos/pkg/cli/log"
	"github.com/researchos/researchos/pkg/cli/output"
	"github.com/spf13/cobra"
)

var example = `
  # list the notes of a project
  researchos notes <project-id>

  # add a note at the end of a project
  researchos notes add <project-id> "Lab meeting"`

// NewCmd returns a new notes command
func NewCmd(ctx context.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notes <project-id>",
		Aliases: []string{"n"},
		Short:   "List the notes of a project",
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    newListRun(ctx, os.Stdout),
	}

	add := &cobra.Command{
		Use:   "add <project-id> <title>",
		Short: "Add a note to a project",
		Args:  cobra.ExactArgs(2),
		RunE:  newAddRun(ctx),
	}

	cmd.AddCommand(add)

	return cmd
}

func list(ctx context.Ctx, w io.Writer, projectUUID string) error {
	notes, err := client.GetNotes(ctx, projectUUID)
	if err != nil {
		return errors.New(client.Message(err))
	}

	if len(notes) == 0 {
		log.Info("no notes yet\n")
		return nil
	}

	for _, n := range notes {
		output.NoteLine(w, n)
	}

	return nil
}

func newListRun(ctx context.Ctx, w io.Writer) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := infra.RequireLogin(ctx); err != nil {
			return err
		}

		return list(ctx, w, args[0])
	}
}

func newAddRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := infra.RequireLogin(ctx); err != nil {
			return err
		}

		n, err := client.CreateNote(ctx, args[0], args[1])
		if err != nil {
			return errors.New(client.Message(err))
		}

		log.Successf("added note %s (%s)\n", n.Title, n.UUID)

		return nil
	}
}
