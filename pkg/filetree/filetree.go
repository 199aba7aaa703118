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

// Package filetree is an in-memory tree of project files with an optional
// mirror on a local folder
package filetree

import (
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/clock"
	"github.com/researchos/researchos/pkg/server/log"
)

var (
	// ErrNotFound is returned for a path that is not in the tree
	ErrNotFound = errors.New("no such file or directory")
	// ErrIsDir is returned when a file operation targets a directory
	ErrIsDir = errors.New("is a directory")
	// ErrNotDir is returned when a directory operation targets a file
	ErrNotDir = errors.New("not a directory")
	// ErrRoot is returned for an attempt to remove the root
	ErrRoot = errors.New("cannot remove the root")
)

// Mirror receives every change made to the tree. Its failures never undo
// the change in memory.
type Mirror interface {
	EnsureDirectory(p string) error
	WriteFile(p string, data []byte) error
	DeleteEntry(p string) error
}

// Entry describes a node of the tree
type Entry struct {
	Path    string
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

type node struct {
	isDir    bool
	data     []byte
	modTime  time.Time
	children map[string]*node
}

func newDir(t time.Time) *node {
	return &node{isDir: true, modTime: t, children: map[string]*node{}}
}

// Tree is safe for concurrent use
type Tree struct {
	clock clock.Clock

	mu     sync.RWMutex
	root   *node
	mirror Mirror
}

// New returns an empty tree. The mirror may be nil.
func New(m Mirror, c clock.Clock) *Tree {
	if c == nil {
		c = clock.New()
	}

	return &Tree{
		clock:  c,
		root:   newDir(c.Now()),
		mirror: m,
	}
}

// SetMirror replaces the mirror. Nil disables mirroring.
func (t *Tree) SetMirror(m Mirror) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mirror = m
}

// Clean normalizes p to a slash separated path relative to the root. The
// root is the empty string.
func Clean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func split(p string) []string {
	if p == "" {
		return nil
	}

	return strings.Split(p, "/")
}

// lookup returns the node at the cleaned path. The caller must hold the lock.
func (t *Tree) lookup(p string) (*node, bool) {
	n := t.root
	for _, name := range split(p) {
		if !n.isDir {
			return nil, false
		}
		child, ok := n.children[name]
		if !ok {
			return nil, false
		}
		n = child
	}

	return n, true
}

// mkdirAll creates the directory and its parents. The caller must hold the
// lock.
func (t *Tree) mkdirAll(p string) (*node, error) {
	n := t.root
	for _, name := range split(p) {
		child, ok := n.children[name]
		if !ok {
			child = newDir(t.clock.Now())
			n.children[name] = child
		} else if !child.isDir {
			return nil, errors.Wrap(ErrNotDir, p)
		}
		n = child
	}

	return n, nil
}

func (t *Tree) mirrorDo(op, p string, fn func(m Mirror) error) {
	t.mu.RLock()
	m := t.mirror
	t.mu.RUnlock()

	if m == nil {
		return
	}
	if err := fn(m); err != nil {
		log.WithFields(log.Fields{
			"op":    op,
			"path":  p,
			"error": err.Error(),
		}).Warn("mirroring file tree")
	}
}

// Mkdir creates the directory and any missing parents
func (t *Tree) Mkdir(p string) error {
	p = Clean(p)
	if err := t.mkdir(p); err != nil {
		return err
	}

	t.mirrorDo("mkdir", p, func(m Mirror) error { return m.EnsureDirectory(p) })

	return nil
}

func (t *Tree) mkdir(p string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.mkdirAll(p)
	return err
}

// WriteFile creates or replaces the file, creating missing parents
func (t *Tree) WriteFile(p string, data []byte) error {
	p = Clean(p)
	if err := t.writeFile(p, data); err != nil {
		return err
	}

	t.mirrorDo("write", p, func(m Mirror) error { return m.WriteFile(p, data) })

	return nil
}

func (t *Tree) writeFile(p string, data []byte) error {
	if p == "" {
		return ErrIsDir
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	dir, name := path.Split(p)
	parent, err := t.mkdirAll(Clean(dir))
	if err != nil {
		return err
	}
	if existing, ok := parent.children[name]; ok && existing.isDir {
		return errors.Wrap(ErrIsDir, p)
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	parent.children[name] = &node{data: buf, modTime: t.clock.Now()}

	return nil
}

// Remove deletes the file or the directory with everything below it
func (t *Tree) Remove(p string) error {
	p = Clean(p)
	if err := t.remove(p); err != nil {
		return err
	}

	t.mirrorDo("remove", p, func(m Mirror) error { return m.DeleteEntry(p) })

	return nil
}

func (t *Tree) remove(p string) error {
	if p == "" {
		return ErrRoot
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	dir, name := path.Split(p)
	parent, ok := t.lookup(Clean(dir))
	if !ok || !parent.isDir {
		return errors.Wrap(ErrNotFound, p)
	}
	if _, ok := parent.children[name]; !ok {
		return errors.Wrap(ErrNotFound, p)
	}
	delete(parent.children, name)

	return nil
}

func entry(p string, n *node) Entry {
	e := Entry{
		Path:    p,
		Name:    path.Base(p),
		IsDir:   n.isDir,
		ModTime: n.modTime,
	}
	if p == "" {
		e.Name = ""
	}
	if !n.isDir {
		e.Size = int64(len(n.data))
	}

	return e
}

// Stat describes the node at p
func (t *Tree) Stat(p string) (Entry, error) {
	p = Clean(p)

	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.lookup(p)
	if !ok {
		return Entry{}, errors.Wrap(ErrNotFound, p)
	}

	return entry(p, n), nil
}

// ReadFile returns a copy of the file content
func (t *Tree) ReadFile(p string) ([]byte, error) {
	p = Clean(p)

	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.lookup(p)
	if !ok {
		return nil, errors.Wrap(ErrNotFound, p)
	}
	if n.isDir {
		return nil, errors.Wrap(ErrIsDir, p)
	}

	ret := make([]byte, len(n.data))
	copy(ret, n.data)

	return ret, nil
}

// List returns the children of the directory, directories first, each
// group sorted by name
func (t *Tree) List(dir string) ([]Entry, error) {
	dir = Clean(dir)

	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.lookup(dir)
	if !ok {
		return nil, errors.Wrap(ErrNotFound, dir)
	}
	if !n.isDir {
		return nil, errors.Wrap(ErrNotDir, dir)
	}

	ret := make([]Entry, 0, len(n.children))
	for name, child := range n.children {
		ret = append(ret, entry(path.Join(dir, name), child))
	}

	sort.Slice(ret, func(i, j int) bool {
		if ret[i].IsDir != ret[j].IsDir {
			return ret[i].IsDir
		}
		return ret[i].Name < ret[j].Name
	})

	return ret, nil
}

// Walk calls fn for every node below dir in depth-first order
func (t *Tree) Walk(dir string, fn func(e Entry) error) error {
	entries, err := t.List(dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := fn(e); err != nil {
			return err
		}
		if e.IsDir {
			if err := t.Walk(e.Path, fn); err != nil {
				return err
			}
		}
	}

	return nil
}
