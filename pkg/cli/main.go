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

package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/infra"
	"github.com/researchos/researchos/pkg/cli/log"

	// commands
	"github.com/researchos/researchos/pkg/cli/cmd/blocks"
	"github.com/researchos/researchos/pkg/cli/cmd/login"
	"github.com/researchos/researchos/pkg/cli/cmd/logout"
	"github.com/researchos/researchos/pkg/cli/cmd/notes"
	"github.com/researchos/researchos/pkg/cli/cmd/projects"
	"github.com/researchos/researchos/pkg/cli/cmd/register"
	"github.com/researchos/researchos/pkg/cli/cmd/root"
	"github.com/researchos/researchos/pkg/cli/cmd/verify"
	"github.com/researchos/researchos/pkg/cli/cmd/version"
)

// apiEndpoint and versionTag are populated during link time
var apiEndpoint string
var versionTag = "master"

func main() {
	// the context is built before cobra parses the flags
	endpoint := root.ParseAPIEndpoint(os.Args[1:])
	if endpoint == "" {
		endpoint = apiEndpoint
	}

	ctx, err := infra.Init(versionTag, endpoint)
	if err != nil {
		panic(errors.Wrap(err, "initializing context"))
	}

	root.Register(register.NewCmd(*ctx))
	root.Register(verify.NewCmd(*ctx))
	root.Register(verify.NewResendCmd(*ctx))
	root.Register(login.NewCmd(*ctx))
	root.Register(logout.NewCmd(*ctx))
	root.Register(projects.NewCmd(*ctx))
	root.Register(notes.NewCmd(*ctx))
	root.Register(blocks.NewCmd(*ctx))
	root.Register(version.NewCmd(*ctx))

	if err := root.Execute(); err != nil {
		log.Errorf("%s\n", err.Error())
		os.Exit(1)
	}
}
