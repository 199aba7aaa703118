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
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// MinPasswordLength is the minimum length of a password
const MinPasswordLength = 8

// Validation errors. Their text is shown to the user as is.
var (
	ErrNameRequired        = errors.New("Full name is required")
	ErrEmailRequired       = errors.New("Email is required")
	ErrEmailInvalid        = errors.New("Please enter a valid email address")
	ErrPasswordTooShort    = errors.New("Password must be at least 8 characters")
	ErrPasswordMismatch    = errors.New("Passwords do not match")
	ErrCountryRequired     = errors.New("Please select your country")
	ErrCustomCountry       = errors.New("Please enter your country name")
	ErrInstitutionRequired = errors.New("Please select or enter your institution")
	ErrCustomInstitution   = errors.New("Please enter your institution name")
	ErrRoleRequired        = errors.New("Please select your role")
	ErrCustomRole          = errors.New("Please enter your role")
	ErrCodeIncomplete      = errors.New("Please enter the 6-digit code")
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Account holds the first step of the wizard
type Account struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate returns the first failing check
func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmailRequired
	}
	if !emailRegex.MatchString(strings.TrimSpace(a.Email)) {
		return ErrEmailInvalid
	}
	if len(a.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if a.Password != a.ConfirmPassword {
		return ErrPasswordMismatch
	}

	return nil
}

// Affiliation holds the location and institution step
type Affiliation struct {
	Country     Choice
	State       Choice
	City        Choice
	Institution Choice
	Department  string
}

// Validate returns the first failing check
func (a Affiliation) Validate() error {
	if a.Country.IsZero() {
		return ErrCountryRequired
	}
	if a.Country.IsCustom() && a.Country.Value() == "" {
		return ErrCustomCountry
	}
	if a.Institution.IsZero() {
		return ErrInstitutionRequired
	}
	if a.Institution.IsCustom() && a.Institution.Value() == "" {
		return ErrCustomInstitution
	}

	return nil
}

// state resolves the state field. Outside India only free text counts.
func (a Affiliation) state() string {
	if a.Country.Is(India) || a.State.IsCustom() {
		return a.State.Value()
	}

	return ""
}

// city resolves the city field. A list value only counts for an Indian
// state that has a list of major cities.
func (a Affiliation) city() string {
	if a.City.IsCustom() {
		return a.City.Value()
	}
	if a.Country.Is(India) {
		if _, ok := MajorCities[a.State.Value()]; ok && !a.State.IsCustom() {
			return a.City.Value()
		}
	}

	return ""
}

// CityOptions returns the list offered for the city field, or nil when the
// city is free text
func (a Affiliation) CityOptions() []string {
	if !a.Country.Is(India) || a.State.IsCustom() {
		return nil
	}

	return MajorCities[a.State.Value()]
}

// ResearchProfile holds the role and research step
type ResearchProfile struct {
	Role         Choice
	ResearchArea Choice
	OrcidID      string
}

// Validate returns the first failing check
func (p ResearchProfile) Validate() error {
	if p.Role.IsZero() {
		return ErrRoleRequired
	}
	if p.Role.IsCustom() && p.Role.Value() == "" {
		return ErrCustomRole
	}

	return nil
}
