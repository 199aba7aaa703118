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

// Package mailer renders and delivers transactional emails
package mailer

import (
	"bytes"
	"fmt"
	htemplate "html/template"
	"io"
	ttemplate "text/template"

	"github.com/aymerick/douceur/inliner"
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/mailer/templates"
)

var (
	// EmailTypeVerification represents an email carrying a verification code
	EmailTypeVerification = "verification"
	// EmailTypeWelcome represents a welcome email sent after verification
	EmailTypeWelcome = "welcome"
)

var (
	// EmailKindText is the type of text email
	EmailKindText = "text/plain"
	// EmailKindHTML is the type of html email
	EmailKindHTML = "text/html"
)

// tmpl is the common interface shared between Template from
// html/template and text/template
type tmpl interface {
	Execute(wr io.Writer, data interface{}) error
}

// template wraps a template with its subject line
type template struct {
	tmpl    tmpl
	subject string
}

// Templates holds the parsed email templates with their subjects
type Templates map[string]template

func getTemplateKey(name, kind string) string {
	return fmt.Sprintf("%s.%s", name, kind)
}

func (tmpl Templates) get(name, kind string) (template, error) {
	key := getTemplateKey(name, kind)
	t := tmpl[key]
	if t.tmpl == nil {
		return template{}, errors.Errorf("unsupported template '%s' with type '%s'", name, kind)
	}

	return t, nil
}

func (tmpl Templates) set(name, kind string, t tmpl, subject string) {
	key := getTemplateKey(name, kind)
	tmpl[key] = template{
		tmpl:    t,
		subject: subject,
	}
}

var subjects = map[string]string{
	EmailTypeVerification: "Verify your ResearchOS email address",
	EmailTypeWelcome:      "Welcome to ResearchOS!",
}

// NewTemplates initializes templates
func NewTemplates() Templates {
	T := Templates{}

	for name, subject := range subjects {
		text, err := initTextTmpl(name)
		if err != nil {
			panic(errors.Wrapf(err, "initializing %s text template", name))
		}
		html, err := initHTMLTmpl(name)
		if err != nil {
			panic(errors.Wrapf(err, "initializing %s html template", name))
		}

		T.set(name, EmailKindText, text, subject)
		T.set(name, EmailKindHTML, html, subject)
	}

	return T
}

// initTextTmpl returns a template instance by parsing the template with the given name
func initTextTmpl(templateName string) (tmpl, error) {
	content, err := templates.Files.ReadFile(fmt.Sprintf("%s.txt", templateName))
	if err != nil {
		return nil, errors.Wrap(err, "reading template")
	}

	t := ttemplate.New(templateName)
	if _, err = t.Parse(string(content)); err != nil {
		return nil, errors.Wrap(err, "parsing template")
	}

	return t, nil
}

// initHTMLTmpl parses the html template with the given name. Styles declared
// in the template head are inlined into the elements since most mail clients
// strip style blocks.
func initHTMLTmpl(templateName string) (tmpl, error) {
	content, err := templates.Files.ReadFile(fmt.Sprintf("%s.html", templateName))
	if err != nil {
		return nil, errors.Wrap(err, "reading template")
	}

	inlined, err := inliner.Inline(string(content))
	if err != nil {
		return nil, errors.Wrap(err, "inlining css")
	}

	t := htemplate.New(templateName)
	if _, err = t.Parse(inlined); err != nil {
		return nil, errors.Wrap(err, "parsing template")
	}

	return t, nil
}

// Execute executes the template and returns the subject, body, and any error
func (tmpl Templates) Execute(name, kind string, data any) (subject, body string, err error) {
	t, err := tmpl.get(name, kind)
	if err != nil {
		return "", "", errors.Wrap(err, "getting template")
	}

	buf := new(bytes.Buffer)
	if err := t.tmpl.Execute(buf, data); err != nil {
		return "", "", errors.Wrap(err, "executing the template")
	}

	return t.subject, buf.String(), nil
}
