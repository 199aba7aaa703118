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

package utils

import (
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// regexNumber is a regex that matches a string that looks like an integer
var regexNumber = regexp.MustCompile(`^\d+$`)

// ErrInvalidPosition is returned for a position that is not a positive number
var ErrInvalidPosition = errors.New("invalid position")

// IsNumber checks if the given string is in the form of a number
func IsNumber(s string) bool {
	if s == "" {
		return false
	}

	return regexNumber.MatchString(s)
}

// ParsePosition parses a 1-based position among count items and returns the
// 0-based index
func ParsePosition(s string, count int) (int, error) {
	if !IsNumber(s) {
		return 0, errors.Wrapf(ErrInvalidPosition, "'%s'", s)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing position '%s'", s)
	}
	if n < 1 || n > count {
		return 0, errors.Errorf("position %d is out of range 1-%d", n, count)
	}

	return n - 1, nil
}
