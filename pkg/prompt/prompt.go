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

// Package prompt reads answers to interactive questions
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidChoice is returned when the answer does not name one of the options
var ErrInvalidChoice = errors.New("invalid choice")

// FormatQuestion formats a yes/no question with the appropriate choice indicator
func FormatQuestion(question string, optimistic bool) string {
	choices := "(y/N)"
	if optimistic {
		choices = "(Y/n)"
	}
	return fmt.Sprintf("%s %s", question, choices)
}

// ReadLine reads a single line from the reader without the line terminator
func ReadLine(r *bufio.Reader) (string, error) {
	input, err := r.ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", err
	}

	return strings.TrimRight(input, "\r\n"), nil
}

// ReadYesNo reads and parses a yes/no response from the given reader.
// In optimistic mode, empty input is treated as confirmation.
func ReadYesNo(r io.Reader, optimistic bool) (bool, error) {
	input, err := ReadLine(bufio.NewReader(r))
	if err != nil {
		return false, err
	}

	input = strings.ToLower(strings.TrimSpace(input))
	confirmed := input == "y"

	if optimistic {
		confirmed = confirmed || input == ""
	}

	return confirmed, nil
}

// FormatChoices renders the options as a numbered list, one per line
func FormatChoices(options []string) string {
	var b strings.Builder
	for i, o := range options {
		fmt.Fprintf(&b, "%3d) %s\n", i+1, o)
	}

	return b.String()
}

// ParseChoice resolves an answer to one of the options. The answer may be the
// 1-based number of the option or the option text itself, case-insensitively.
// An empty answer selects the default option, if one is given.
func ParseChoice(input string, options []string, defaultOption string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		if defaultOption == "" {
			return "", ErrInvalidChoice
		}
		return defaultOption, nil
	}

	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(options) {
			return "", errors.Wrapf(ErrInvalidChoice, "%d is out of range", n)
		}
		return options[n-1], nil
	}

	for _, o := range options {
		if strings.EqualFold(o, input) {
			return o, nil
		}
	}

	return "", errors.Wrapf(ErrInvalidChoice, "'%s'", input)
}
