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

package root

import (
	"strings"

	"github.com/spf13/cobra"
)

var apiEndpointFlag string

var root = &cobra.Command{
	Use:           "researchos",
	Short:         "ResearchOS - research notebooks from the command line",
	SilenceErrors: true,
	SilenceUsage:  true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	// read before the commands are built, see ParseAPIEndpoint
	root.PersistentFlags().StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")
}

// GetRoot returns the root command
func GetRoot() *cobra.Command {
	return root
}

// ParseAPIEndpoint extracts the --apiEndpoint flag value from command line
// arguments regardless of where it appears. The context is set up before
// cobra parses the flags, so the value is needed ahead of time. Returns an
// empty string if not found.
func ParseAPIEndpoint(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if strings.HasPrefix(arg, "--apiEndpoint=") {
			return strings.TrimPrefix(arg, "--apiEndpoint=")
		}
		if arg == "--apiEndpoint" && i+1 < len(args) {
			return args[i+1]
		}
	}

	return ""
}

// Register adds a new command
func Register(cmd *cobra.Command) {
	root.AddCommand(cmd)
}

// Execute runs the main command
func Execute() error {
	return root.Execute()
}
