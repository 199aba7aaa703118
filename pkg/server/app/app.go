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

package app

import (
	"time"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/clock"
	"github.com/researchos/researchos/pkg/server/blob"
	"github.com/researchos/researchos/pkg/server/llm"
	"github.com/researchos/researchos/pkg/server/mailer"
	"github.com/researchos/researchos/pkg/server/verification"
	"gorm.io/gorm"
)

var (
	// ErrEmptyDB is an error for missing database connection in the app configuration
	ErrEmptyDB = errors.New("No database connection was provided")
	// ErrEmptyClock is an error for missing clock in the app configuration
	ErrEmptyClock = errors.New("No clock was provided")
	// ErrEmptyBaseURL is an error for missing BaseURL content in the app configuration
	ErrEmptyBaseURL = errors.New("No BaseURL was provided")
	// ErrEmptyEmailBackend is an error for missing EmailBackend content in the app configuration
	ErrEmptyEmailBackend = errors.New("No EmailBackend was provided")
	// ErrEmptyBlobStore is an error for missing blob store in the app configuration
	ErrEmptyBlobStore = errors.New("No blob store was provided")
)

// CodeGenerator issues email verification codes
type CodeGenerator interface {
	Generate(now time.Time) (verification.Code, error)
}

// App is an application context
type App struct {
	DB           *gorm.DB
	Clock        clock.Clock
	EmailBackend mailer.Backend
	Blob         blob.Store
	// LLM is optional. The assistant endpoints answer 503 without it.
	LLM   llm.Completer
	Codes CodeGenerator
	Tasks *Tasks

	BaseURL             string
	EmailFrom           string
	DisableRegistration bool
	Port                string
	DBDriver            string
	DBPath              string
	AppEnv              string
	CSRFKey             string
}

// Validate validates the app configuration
func (a *App) Validate() error {
	if a.BaseURL == "" {
		return ErrEmptyBaseURL
	}
	if a.Clock == nil {
		return ErrEmptyClock
	}
	if a.EmailBackend == nil {
		return ErrEmptyEmailBackend
	}
	if a.DB == nil {
		return ErrEmptyDB
	}
	if a.Blob == nil {
		return ErrEmptyBlobStore
	}

	return nil
}

func (a *App) codes() CodeGenerator {
	if a.Codes == nil {
		return verification.Generator{}
	}

	return a.Codes
}

var defaultTasks Tasks

func (a *App) tasks() *Tasks {
	if a.Tasks == nil {
		return &defaultTasks
	}

	return a.Tasks
}
