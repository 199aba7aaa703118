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

// Package dirs resolves the XDG base directories used by the ResearchOS
// server and command line client
package dirs

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// AppDirName is the directory created under each base directory
const AppDirName = "researchos"

// The environment variable names for the XDG base directory specification
var (
	envConfigHome = "XDG_CONFIG_HOME"
	envDataHome   = "XDG_DATA_HOME"
	envCacheHome  = "XDG_CACHE_HOME"
)

var (
	// Home is the home directory of the user
	Home string
	// ConfigHome is the full path to the directory in which user-specific
	// configurations should be written.
	ConfigHome string
	// DataHome is the full path to the directory in which user-specific data
	// files should be written.
	DataHome string
	// CacheHome is the full path to the directory in which user-specific
	// non-essential data files should be written.
	CacheHome string
)

func init() {
	Reload()
}

// Reload reloads the directory definitions from the environment
func Reload() {
	Home = getHomeDir()
	ConfigHome = readPath(envConfigHome, filepath.Join(Home, ".config"))
	DataHome = readPath(envDataHome, filepath.Join(Home, ".local", "share"))
	CacheHome = readPath(envCacheHome, filepath.Join(Home, ".cache"))
}

// ConfigFile returns the path of the named file in the application config directory
func ConfigFile(name string) string {
	return filepath.Join(ConfigHome, AppDirName, name)
}

// DataFile returns the path of the named file in the application data directory
func DataFile(name string) string {
	return filepath.Join(DataHome, AppDirName, name)
}

// EnsureParent creates the parent directory of the given path
func EnsureParent(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}

	return nil
}

func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(errors.Wrap(err, "getting home dir"))
	}

	return home
}

func readPath(envName, defaultPath string) string {
	if dir := os.Getenv(envName); dir != "" {
		return dir
	}

	return defaultPath
}
