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

// Package projects implements the commands that list and create projects
package projects

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
  # list projects
  researchos projects

  # create a project
  researchos projects add "Protein folding" -d "Folding kinetics of small proteins"`

var descriptionFlag string

// NewCmd returns a new projects command
func NewCmd(ctx context.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"p"},
		Short:   "List projects",
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newListRun(ctx, os.Stdout),
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE:  newAddRun(ctx),
	}
	add.Flags().StringVarP(&descriptionFlag, "description", "d", "", "description of the project")

	cmd.AddCommand(add)

	return cmd
}

func list(ctx context.Ctx, w io.Writer) error {
	projects, err := client.GetProjects(ctx)
	if err != nil {
		return errors.Wrap(err, "getting projects")
	}

	if len(projects) == 0 {
		log.Info("no projects yet\n")
		return nil
	}

	for _, p := range projects {
		output.ProjectLine(w, p)
	}

	return nil
}

func newListRun(ctx context.Ctx, w io.Writer) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := infra.RequireLogin(ctx); err != nil {
			return err
		}

		return list(ctx, w)
	}
}

func newAddRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := infra.RequireLogin(ctx); err != nil {
			return err
		}

		p, err := client.CreateProject(ctx, args[0], descriptionFlag)
		if err != nil {
			return errors.New(client.Message(err))
		}

		log.Successf("created project %s (%s)\n", p.Name, p.UUID)

		return nil
	}
}
