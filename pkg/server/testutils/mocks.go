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

package testutils

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/llm"
)

// MockEmail is a mock email data
type MockEmail struct {
	TemplateType string
	From         string
	To           []string
	Data         interface{}
}

// MockEmailbackendImplementation is an email backend that records the emails
// instead of sending them. SendEmail returns Err when it is set.
type MockEmailbackendImplementation struct {
	mu     sync.RWMutex
	Emails []MockEmail
	Err    error
}

// Clear clears the mock email queue
func (b *MockEmailbackendImplementation) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Emails = []MockEmail{}
}

// SendEmail is an implementation of Backend.SendEmail.
func (b *MockEmailbackendImplementation) SendEmail(templateType, from string, to []string, data interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Emails = append(b.Emails, MockEmail{
		TemplateType: templateType,
		From:         from,
		To:           to,
		Data:         data,
	})

	return b.Err
}

// GetEmails returns a copy of the recorded emails
func (b *MockEmailbackendImplementation) GetEmails() []MockEmail {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ret := make([]MockEmail, len(b.Emails))
	copy(ret, b.Emails)

	return ret
}

// EmailsOfType returns the recorded emails of the given template type
func (b *MockEmailbackendImplementation) EmailsOfType(templateType string) []MockEmail {
	var ret []MockEmail
	for _, e := range b.GetEmails() {
		if e.TemplateType == templateType {
			ret = append(ret, e)
		}
	}

	return ret
}

// MockBlobStore keeps blobs in memory
type MockBlobStore struct {
	mu    sync.Mutex
	Blobs map[string][]byte
	Err   error
}

// NewMockBlobStore returns an empty store
func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{Blobs: map[string][]byte{}}
}

// Put is an implementation of blob.Store.Put
func (s *MockBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", errors.Wrap(err, "reading blob")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Blobs[key] = buf.Bytes()

	return "/uploads/" + key, nil
}

// Delete is an implementation of blob.Store.Delete
func (s *MockBlobStore) Delete(ctx context.Context, key string) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Blobs, key)

	return nil
}

// Has reports whether a blob is stored under the key
func (s *MockBlobStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.Blobs[key]
	return ok
}

// MockLLM answers every completion with Reply or Err
type MockLLM struct {
	mu       sync.Mutex
	Reply    string
	Err      error
	Requests []llm.Request
}

// Complete is an implementation of llm.Completer
func (m *MockLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	return m.Reply, m.Err
}
