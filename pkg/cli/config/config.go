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

// Package config reads and writes the client configuration file, which also
// holds the current session
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/consts"
	"github.com/researchos/researchos/pkg/cli/context"
	"gopkg.in/yaml.v2"
)

// Config holds researchos configuration
type Config struct {
	Editor           string `yaml:"editor"`
	APIEndpoint      string `yaml:"apiEndpoint"`
	Email            string `yaml:"email,omitempty"`
	SessionKey       string `yaml:"sessionKey,omitempty"`
	SessionKeyExpiry int64  `yaml:"sessionKeyExpiry,omitempty"`
}

// GetPath returns the path to the config file
func GetPath(ctx context.Ctx) string {
	return filepath.Join(ctx.Paths.Config, consts.DirName, consts.ConfigFilename)
}

// Read reads the config file
func Read(ctx context.Ctx) (Config, error) {
	var ret Config

	b, err := os.ReadFile(GetPath(ctx))
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	err = yaml.Unmarshal(b, &ret)
	if err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	return ret, nil
}

// Write writes the config to the config file. The file may hold a session
// key, so it is only readable by the owner.
func Write(ctx context.Ctx, cf Config) error {
	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	err = os.WriteFile(GetPath(ctx), b, 0600)
	if err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}

// SaveSession stores the session in the config file
func SaveSession(ctx context.Ctx, email, key string, expiry int64) error {
	cf, err := Read(ctx)
	if err != nil {
		return err
	}

	cf.Email = email
	cf.SessionKey = key
	cf.SessionKeyExpiry = expiry

	return Write(ctx, cf)
}

// ClearSession removes the session from the config file
func ClearSession(ctx context.Ctx) error {
	return SaveSession(ctx, "", "", 0)
}
