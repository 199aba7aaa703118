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

package presenters

import (
	"time"

	"github.com/researchos/researchos/pkg/server/database"
)

// User is a result of PresentUser
type User struct {
	UUID          string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Institution   string    `json:"institution,omitempty"`
	Department    string    `json:"department,omitempty"`
	Role          string    `json:"role,omitempty"`
	ResearchArea  string    `json:"researchArea,omitempty"`
	Country       string    `json:"country,omitempty"`
	State         string    `json:"state,omitempty"`
	City          string    `json:"city,omitempty"`
	OrcidID       string    `json:"orcidId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PresentUser presents a user
func PresentUser(user database.User) User {
	return User{
		UUID:          user.UUID,
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Institution:   user.Institution,
		Department:    user.Department,
		Role:          user.Role,
		ResearchArea:  user.ResearchArea,
		Country:       user.Country,
		State:         user.State,
		City:          user.City,
		OrcidID:       user.OrcidID,
		CreatedAt:     FormatTS(user.CreatedAt),
	}
}

// RegisteredUser is the user returned by registration
type RegisteredUser struct {
	UUID  string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PresentRegisteredUser presents a newly registered user
func PresentRegisteredUser(user database.User) RegisteredUser {
	return RegisteredUser{
		UUID:  user.UUID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// Session is a result of PresentSession
type Session struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PresentSession presents a session
func PresentSession(s database.Session) Session {
	return Session{
		Key:       s.Key,
		ExpiresAt: FormatTS(s.ExpiresAt),
	}
}
