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

package controllers

import (
	"net/http"

	"github.com/researchos/researchos/pkg/server/app"
	"github.com/researchos/researchos/pkg/server/llm"
)

// NewAssist creates a new Assist controller
func NewAssist(app *app.App) *Assist {
	return &Assist{
		app: app,
	}
}

// Assist is a controller for the writing assistant
type Assist struct {
	app *app.App
}

type rephrasePayload struct {
	Text string `schema:"text" json:"text"`
}

// RephraseResponse is the rewritten text with its changes
type RephraseResponse struct {
	RephrasedText string       `json:"rephrasedText"`
	Diff          []app.DiffOp `json:"diff"`
}

// Rephrase rewrites a piece of text
func (a *Assist) Rephrase(w http.ResponseWriter, r *http.Request) {
	var params rephrasePayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	res, err := a.app.Rephrase(r.Context(), params.Text)
	if err != nil {
		statusCode, message := getStatusCode(err, "Failed to rephrase text")
		handleJSONErrorWithMessage(w, err, "rephrasing", statusCode, message)
		return
	}

	respondJSON(w, http.StatusOK, RephraseResponse{
		RephrasedText: res.Text,
		Diff:          res.Diff,
	})
}

type chatPayload struct {
	Messages []llm.Message `json:"messages"`
}

// ChatResponse is the reply of the assistant
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Chat answers a conversation
func (a *Assist) Chat(w http.ResponseWriter, r *http.Request) {
	var params chatPayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	reply, err := a.app.Chat(r.Context(), params.Messages)
	if err != nil {
		statusCode, message := getStatusCode(err, "Failed to get a reply")
		handleJSONErrorWithMessage(w, err, "chatting", statusCode, message)
		return
	}

	respondJSON(w, http.StatusOK, ChatResponse{
		Reply: reply,
	})
}
