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

package filetree

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DirMirror mirrors a tree into a folder on the local disk
type DirMirror struct {
	Root string
}

// NewDirMirror returns a mirror rooted at dir, creating it if needed
func NewDirMirror(dir string) (*DirMirror, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating mirror directory %s", dir)
	}

	return &DirMirror{Root: dir}, nil
}

func (m *DirMirror) path(p string) string {
	return filepath.Join(m.Root, filepath.FromSlash(Clean(p)))
}

// EnsureDirectory creates the directory and its parents
func (m *DirMirror) EnsureDirectory(p string) error {
	if err := os.MkdirAll(m.path(p), 0755); err != nil {
		return errors.Wrapf(err, "creating directory %s", p)
	}

	return nil
}

// WriteFile writes the file, creating its parents
func (m *DirMirror) WriteFile(p string, data []byte) error {
	fp := m.path(p)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return errors.Wrapf(err, "creating parent of %s", p)
	}
	if err := os.WriteFile(fp, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", p)
	}

	return nil
}

// DeleteEntry removes the file or directory. A missing entry is not an error.
func (m *DirMirror) DeleteEntry(p string) error {
	if Clean(p) == "" {
		return ErrRoot
	}
	if err := os.RemoveAll(m.path(p)); err != nil {
		return errors.Wrapf(err, "removing %s", p)
	}

	return nil
}
