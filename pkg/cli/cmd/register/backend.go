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

package register

import (
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/client"
	"github.com/researchos/researchos/pkg/cli/context"
	"github.com/researchos/researchos/pkg/cli/log"
	"github.com/researchos/researchos/pkg/registration"
)

// apiBackend runs the registration wizard against the server. Failures
// carry the message the server gave so the wizard can show it as is.
type apiBackend struct {
	ctx     context.Ctx
	session client.Session
}

func serverError(err error) error {
	log.Debug("%+v\n", err)

	return errors.New(client.Message(err))
}

func (b *apiBackend) Register(s registration.Submission) error {
	_, err := client.Register(b.ctx, client.RegisterPayload{
		Name:         s.Name,
		Email:        s.Email,
		Password:     s.Password,
		Institution:  s.Institution,
		Department:   s.Department,
		Role:         s.Role,
		ResearchArea: s.ResearchArea,
		Country:      s.Country,
		State:        s.State,
		City:         s.City,
		OrcidID:      s.OrcidID,
	})
	if err != nil {
		return serverError(err)
	}

	return nil
}

func (b *apiBackend) VerifyEmail(email, code string) error {
	resp, err := client.VerifyEmail(b.ctx, email, code)
	if err != nil {
		return serverError(err)
	}

	b.session = resp.Session

	return nil
}

func (b *apiBackend) ResendCode(email string) error {
	if _, err := client.ResendCode(b.ctx, email); err != nil {
		return serverError(err)
	}

	return nil
}
