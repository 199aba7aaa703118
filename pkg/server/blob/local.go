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

package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LocalStore keeps blobs in a directory on the local disk. The directory
// is served by the HTTP server under URLPrefix.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

// NewLocalStore returns a store rooted at dir, creating it if needed
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating upload directory %s", dir)
	}

	return &LocalStore{
		Dir:       dir,
		URLPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

func (s *LocalStore) path(key string) (string, string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", "", err
	}

	return k, filepath.Join(s.Dir, filepath.FromSlash(k)), nil
}

// Put writes the blob to disk. A partially written file is removed.
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	k, p, err := s.path(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", errors.Wrap(err, "creating blob directory")
	}

	f, err := os.Create(p)
	if err != nil {
		return "", errors.Wrap(err, "creating blob file")
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return "", errors.Wrap(err, "writing blob")
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return "", errors.Wrap(err, "closing blob file")
	}

	return s.URLPrefix + "/" + k, nil
}

// Delete removes the blob. Deleting a missing blob is not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	_, p, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing blob")
	}

	return nil
}
