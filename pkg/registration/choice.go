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

package registration

import (
	"strings"
)

type choiceKind int

const (
	choiceNone choiceKind = iota
	choiceSelected
	choiceCustom
)

// Choice is the answer to a field offered as a list with an "Other" option.
// It is either a value selected from the list or custom free text.
type Choice struct {
	kind choiceKind
	text string
}

// Selected returns a choice of the given list value. Selecting Other yields
// an empty custom choice.
func Selected(value string) Choice {
	value = strings.TrimSpace(value)
	if value == "" {
		return Choice{}
	}
	if value == Other {
		return Custom("")
	}

	return Choice{kind: choiceSelected, text: value}
}

// Custom returns a choice of free text entered for Other
func Custom(text string) Choice {
	return Choice{kind: choiceCustom, text: strings.TrimSpace(text)}
}

// IsZero reports whether nothing was chosen
func (c Choice) IsZero() bool {
	return c.kind == choiceNone
}

// IsCustom reports whether the choice is free text
func (c Choice) IsCustom() bool {
	return c.kind == choiceCustom
}

// Is reports whether the choice is the given list value
func (c Choice) Is(value string) bool {
	return c.kind == choiceSelected && c.text == value
}

// Value resolves the choice to the string sent to the server
func (c Choice) Value() string {
	return c.text
}

func (c Choice) String() string {
	switch c.kind {
	case choiceSelected:
		return c.text
	case choiceCustom:
		return Other + ": " + c.text
	default:
		return ""
	}
}
