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

package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/log"
	"github.com/researchos/researchos/pkg/prompt"
	"golang.org/x/term"
)

// stdin is shared by every prompt so that input buffered by one read is not
// lost to the next
var stdin = bufio.NewReader(os.Stdin)

// PromptInput prompts the user input and saves the result to the destination
func PromptInput(message string, dest *string) error {
	log.Askf(message, false)

	input, err := prompt.ReadLine(stdin)
	if err != nil {
		return errors.Wrap(err, "getting user input")
	}

	*dest = input

	return nil
}

// PromptPassword prompts the user input a password and saves the result to the destination.
// The input is masked, meaning it is not echoed on the terminal.
func PromptPassword(message string, dest *string) error {
	log.Askf(message, true)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return PromptInput("", dest)
	}

	password, err := term.ReadPassword(fd)
	if err != nil {
		return errors.Wrap(err, "getting user input")
	}

	fmt.Println("")

	*dest = string(password)

	return nil
}

// Confirm prompts for user input to confirm a choice
func Confirm(question string, optimistic bool) (bool, error) {
	message := prompt.FormatQuestion(question, optimistic)

	log.Askf(message, false)

	confirmed, err := prompt.ReadYesNo(stdin, optimistic)
	if err != nil {
		return false, errors.Wrap(err, "Failed to get user input")
	}

	return confirmed, nil
}

// PromptChoice shows the options as a numbered list and asks until the
// answer names one of them. An empty answer picks defaultOption when it is
// given.
func PromptChoice(message string, options []string, defaultOption string) (string, error) {
	return promptChoice(stdin, color.Output, message, options, defaultOption)
}

func promptChoice(r *bufio.Reader, w io.Writer, message string, options []string, defaultOption string) (string, error) {
	fmt.Fprint(w, prompt.FormatChoices(options))

	if defaultOption != "" {
		message = fmt.Sprintf("%s [%s]", message, defaultOption)
	}

	for {
		log.Askf(message, false)

		input, err := prompt.ReadLine(r)
		if err != nil {
			return "", errors.Wrap(err, "getting user input")
		}

		choice, err := prompt.ParseChoice(input, options, defaultOption)
		if err == nil {
			return choice, nil
		}
		if !errors.Is(err, prompt.ErrInvalidChoice) {
			return "", err
		}

		log.Warnf("please pick one of the numbers above\n")
	}
}

// ReadStdInput reads all of stdin
func ReadStdInput() (string, error) {
	var lines []string

	s := bufio.NewScanner(stdin)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	err := s.Err()
	if err != nil {
		return "", errors.Wrap(err, "reading pipe")
	}

	return strings.Join(lines, "\n"), nil
}
