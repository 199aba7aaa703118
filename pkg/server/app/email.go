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
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/log"
	"github.com/researchos/researchos/pkg/server/mailer"
	"github.com/researchos/researchos/pkg/server/verification"
)

// GetSenderEmail returns the sender address. An explicitly configured
// address wins over the noreply address of the base URL's domain.
func GetSenderEmail(baseURL, want string) (string, error) {
	if want != "" {
		return want, nil
	}

	addr, err := getNoreplySender(baseURL)
	if err != nil {
		return "", errors.Wrap(err, "getting sender email address")
	}

	return addr, nil
}

func getDomainFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "parsing url")
	}

	host := u.Hostname()
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host, nil
	}
	domain := parts[len(parts)-2] + "." + parts[len(parts)-1]

	return domain, nil
}

func getNoreplySender(baseURL string) (string, error) {
	domain, err := getDomainFromURL(baseURL)
	if err != nil {
		return "", errors.Wrap(err, "parsing base url")
	}

	addr := fmt.Sprintf("noreply@%s", domain)
	return addr, nil
}

// SendVerificationEmail sends the verification code to the user
func (a *App) SendVerificationEmail(user database.User, code string) error {
	from, err := GetSenderEmail(a.BaseURL, a.EmailFrom)
	if err != nil {
		return errors.Wrap(err, "getting the sender email")
	}

	data := mailer.VerificationTmplData{
		Name:             user.Name,
		Code:             code,
		ExpiresInMinutes: int(verification.CodeTTL.Minutes()),
		BaseURL:          a.BaseURL,
	}

	if err := a.EmailBackend.SendEmail(mailer.EmailTypeVerification, from, []string{user.Email}, data); err != nil {
		return errors.Wrapf(err, "sending verification email for %s", user.Email)
	}

	return nil
}

// SendWelcomeEmail sends welcome email
func (a *App) SendWelcomeEmail(user database.User) error {
	from, err := GetSenderEmail(a.BaseURL, a.EmailFrom)
	if err != nil {
		return errors.Wrap(err, "getting the sender email")
	}

	data := mailer.WelcomeTmplData{
		Name:         user.Name,
		AccountEmail: user.Email,
		BaseURL:      a.BaseURL,
	}

	if err := a.EmailBackend.SendEmail(mailer.EmailTypeWelcome, from, []string{user.Email}, data); err != nil {
		return errors.Wrapf(err, "sending welcome email for %s", user.Email)
	}

	return nil
}

// deliverCode sends the code and logs a delivery failure. The code is
// already persisted so the user can always ask for another one.
func (a *App) deliverCode(user database.User, code string) {
	if err := a.SendVerificationEmail(user, code); err != nil {
		log.WithFields(log.Fields{
			"email": user.Email,
			"type":  mailer.EmailTypeVerification,
		}).ErrorWrap(err, "delivering verification code")
	}
}
