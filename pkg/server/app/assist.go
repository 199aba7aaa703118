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
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/llm"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const rephrasePrompt = "You are an expert editor. Rephrase the following text without changing its meaning or context. Improve grammar, clarity, and human tone. Return ONLY the rephrased text, no explanations."

const chatPrompt = "You are a research assistant for electrochemistry researchers. Answer concisely and say so when you are unsure."

// DiffOp is one span of a word level diff
type DiffOp struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

// Diff ops
const (
	DiffOpEqual  = "equal"
	DiffOpInsert = "insert"
	DiffOpDelete = "delete"
)

// RephraseResult is the rephrased text with the changes against the input
type RephraseResult struct {
	Text string
	Diff []DiffOp
}

func diffText(before, after string) []DiffOp {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	ret := make([]DiffOp, 0, len(diffs))
	for _, d := range diffs {
		var op string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = DiffOpInsert
		case diffmatchpatch.DiffDelete:
			op = DiffOpDelete
		default:
			op = DiffOpEqual
		}

		ret = append(ret, DiffOp{Op: op, Text: d.Text})
	}

	return ret
}

// Rephrase asks the LLM for a meaning preserving rewrite of the text. An
// empty completion returns the input unchanged.
func (a *App) Rephrase(ctx context.Context, text string) (RephraseResult, error) {
	if strings.TrimSpace(text) == "" {
		return RephraseResult{}, ErrTextRequired
	}
	if a.LLM == nil {
		return RephraseResult{}, ErrAssistantUnavailable
	}

	out, err := a.LLM.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: rephrasePrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		return RephraseResult{}, errors.Wrap(err, "getting completion")
	}

	out = strings.TrimSpace(out)
	if out == "" {
		out = text
	}

	return RephraseResult{
		Text: out,
		Diff: diffText(text, out),
	}, nil
}

// Chat answers the conversation. Messages with unknown roles are sent as
// user messages.
func (a *App) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	var convo []llm.Message
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}

		role := m.Role
		if role != "assistant" {
			role = "user"
		}
		convo = append(convo, llm.Message{Role: role, Content: m.Content})
	}
	if len(convo) == 0 {
		return "", ErrMessagesRequired
	}
	if a.LLM == nil {
		return "", ErrAssistantUnavailable
	}

	out, err := a.LLM.Complete(ctx, llm.Request{
		Messages:    append([]llm.Message{{Role: "system", Content: chatPrompt}}, convo...),
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", errors.Wrap(err, "getting completion")
	}

	return strings.TrimSpace(out), nil
}
