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

// Package infra sets up the local files of the researchos client and
// builds the runtime context
package infra

import (
	"os"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/client"
	"github.com/researchos/researchos/pkg/cli/config"
	"github.com/researchos/researchos/pkg/cli/context"
	"github.com/researchos/researchos/pkg/cli/log"
	"github.com/researchos/researchos/pkg/cli/utils"
	"github.com/researchos/researchos/pkg/clock"
	"github.com/researchos/researchos/pkg/dirs"
	"github.com/spf13/cobra"
)

const (
	// DefaultAPIEndpoint is the default API endpoint used when none is configured
	DefaultAPIEndpoint = "http://localhost:3001/api"
)

// RunEFunc is a function type of researchos commands
type RunEFunc func(*cobra.Command, []string) error

var (
	// ErrLoginRequired is returned by commands that need a session
	ErrLoginRequired = errors.New("not logged in. Please run 'researchos login'")
	// ErrSessionExpired is returned when the saved session has expired
	ErrSessionExpired = errors.New("session expired. Please run 'researchos login'")
)

// RequireLogin checks that the context holds a session that has not expired
func RequireLogin(ctx context.Ctx) error {
	if ctx.SessionKey == "" {
		return ErrLoginRequired
	}
	if ctx.SessionKeyExpiry != 0 && ctx.Clock.Now().Unix() >= ctx.SessionKeyExpiry {
		return ErrSessionExpired
	}

	return nil
}

// Init creates the researchos directories and config file if missing and
// returns a new context. A non-empty apiEndpoint is written to a new config
// file, and overrides the configured one for this run without touching an
// existing config file.
func Init(versionTag, apiEndpoint string) (*context.Ctx, error) {
	ctx := context.Ctx{
		Paths: context.Paths{
			Home:   dirs.Home,
			Config: dirs.ConfigHome,
			Cache:  dirs.CacheHome,
		},
		Version: versionTag,
	}

	if err := initFiles(ctx, apiEndpoint); err != nil {
		return nil, errors.Wrap(err, "initializing files")
	}

	ctx, err := setupCtx(ctx, apiEndpoint)
	if err != nil {
		return nil, errors.Wrap(err, "setting up the context")
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}

// setupCtx enriches the base context with values from the config file
func setupCtx(ctx context.Ctx, apiEndpoint string) (context.Ctx, error) {
	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}

	endpoint := cf.APIEndpoint
	if apiEndpoint != "" {
		endpoint = apiEndpoint
	}

	ret := context.Ctx{
		Paths:            ctx.Paths,
		Version:          ctx.Version,
		APIEndpoint:      endpoint,
		Email:            cf.Email,
		SessionKey:       cf.SessionKey,
		SessionKeyExpiry: cf.SessionKeyExpiry,
		Editor:           cf.Editor,
		Clock:            clock.New(),
		HTTPClient:       client.NewRateLimitedHTTPClient(),
	}

	return ret, nil
}

// getEditorCommand returns the system's editor command with appropriate flags,
// if necessary, to make the command wait until editor is close to exit.
func getEditorCommand() string {
	editor := os.Getenv("EDITOR")

	var ret string

	switch editor {
	case "atom":
		ret = "atom -w"
	case "subl":
		ret = "subl -n -w"
	case "code":
		ret = "code -n -w"
	case "mate":
		ret = "mate -w"
	case "vim":
		ret = "vim"
	case "nano":
		ret = "nano"
	case "emacs":
		ret = "emacs"
	case "nvim":
		ret = "nvim"
	default:
		ret = "vi"
	}

	return ret
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(ctx context.Ctx, apiEndpoint string) error {
	path := config.GetPath(ctx)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	endpoint := apiEndpoint
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}

	cf := config.Config{
		Editor:      getEditorCommand(),
		APIEndpoint: endpoint,
	}

	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}

// initFiles creates, if necessary, the researchos directories and files inside
func initFiles(ctx context.Ctx, apiEndpoint string) error {
	if err := context.InitDirs(ctx.Paths); err != nil {
		return errors.Wrap(err, "creating the researchos dir")
	}
	if err := initConfigFile(ctx, apiEndpoint); err != nil {
		return errors.Wrap(err, "generating the config file")
	}

	return nil
}
