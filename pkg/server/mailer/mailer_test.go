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

package mailer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/assert"
)

func TestAllTemplatesInitialized(t *testing.T) {
	tmpl := NewTemplates()

	emailTypes := []string{
		EmailTypeVerification,
		EmailTypeWelcome,
	}

	for _, emailType := range emailTypes {
		for _, kind := range []string{EmailKindText, EmailKindHTML} {
			t.Run(fmt.Sprintf("%s %s", emailType, kind), func(t *testing.T) {
				_, err := tmpl.get(emailType, kind)
				if err != nil {
					t.Errorf("template %s not initialized: %v", emailType, err)
				}
			})
		}
	}
}

func TestUnknownTemplate(t *testing.T) {
	tmpl := NewTemplates()

	if _, _, err := tmpl.Execute("reset_password", EmailKindText, nil); err == nil {
		t.Error("expected an error for an unknown template")
	}
}

func TestVerificationEmail(t *testing.T) {
	testCases := []struct {
		name    string
		code    string
		baseURL string
	}{
		{
			name:    "Ada Lovelace",
			code:    "482913",
			baseURL: "http://localhost:3000",
		},
		{
			name:    "Srinivasa Ramanujan",
			code:    "100000",
			baseURL: "https://researchos.example.org",
		},
	}

	tmpl := NewTemplates()

	for _, tc := range testCases {
		for _, kind := range []string{EmailKindText, EmailKindHTML} {
			t.Run(fmt.Sprintf("%s %s", kind, tc.code), func(t *testing.T) {
				dat := VerificationTmplData{
					Name:             tc.name,
					Code:             tc.code,
					ExpiresInMinutes: 10,
					BaseURL:          tc.baseURL,
				}
				subject, body, err := tmpl.Execute(EmailTypeVerification, kind, dat)
				if err != nil {
					t.Fatal(errors.Wrap(err, "executing"))
				}

				assert.Equal(t, subject, "Verify your ResearchOS email address", "subject mismatch")
				for _, want := range []string{tc.name, tc.code, tc.baseURL, "10 minutes"} {
					if !strings.Contains(body, want) {
						t.Errorf("email body did not contain %s", want)
					}
				}
			})
		}
	}
}

func TestVerificationEmailInlinesStyles(t *testing.T) {
	tmpl := NewTemplates()

	_, body, err := tmpl.Execute(EmailTypeVerification, EmailKindHTML, VerificationTmplData{
		Name:             "Ada",
		Code:             "123456",
		ExpiresInMinutes: 10,
		BaseURL:          "http://localhost:3000",
	})
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	if !strings.Contains(body, `style="`) {
		t.Errorf("expected inline styles in the html body, got %s", body)
	}
	if !strings.Contains(body, "letter-spacing") {
		t.Errorf("expected the code style to be inlined, got %s", body)
	}
}

func TestVerificationEmailEscapesName(t *testing.T) {
	tmpl := NewTemplates()

	_, body, err := tmpl.Execute(EmailTypeVerification, EmailKindHTML, VerificationTmplData{
		Name: "<script>alert(1)</script>",
		Code: "123456",
	})
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	if strings.Contains(body, "<script>") {
		t.Error("html body did not escape the name")
	}
}

func TestWelcomeEmail(t *testing.T) {
	testCases := []struct {
		accountEmail string
		baseURL      string
	}{
		{
			accountEmail: "test@example.com",
			baseURL:      "http://localhost:3000",
		},
		{
			accountEmail: "user@example.org",
			baseURL:      "http://localhost:3001",
		},
	}

	tmpl := NewTemplates()

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("with BaseURL %s and email %s", tc.baseURL, tc.accountEmail), func(t *testing.T) {
			dat := WelcomeTmplData{
				Name:         "Marie",
				AccountEmail: tc.accountEmail,
				BaseURL:      tc.baseURL,
			}
			subject, body, err := tmpl.Execute(EmailTypeWelcome, EmailKindText, dat)
			if err != nil {
				t.Fatal(errors.Wrap(err, "executing"))
			}

			assert.Equal(t, subject, "Welcome to ResearchOS!", "subject mismatch")
			if ok := strings.Contains(body, tc.baseURL); !ok {
				t.Errorf("email body did not contain %s", tc.baseURL)
			}
			if ok := strings.Contains(body, tc.accountEmail); !ok {
				t.Errorf("email body did not contain %s", tc.accountEmail)
			}
		})
	}
}
