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
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/researchos/researchos/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mirrorCall struct {
	op   string
	path string
}

type fakeMirror struct {
	err   error
	calls []mirrorCall
}

func (m *fakeMirror) EnsureDirectory(p string) error {
	m.calls = append(m.calls, mirrorCall{"mkdir", p})
	return m.err
}

func (m *fakeMirror) WriteFile(p string, data []byte) error {
	m.calls = append(m.calls, mirrorCall{"write", p})
	return m.err
}

func (m *fakeMirror) DeleteEntry(p string) error {
	m.calls = append(m.calls, mirrorCall{"delete", p})
	return m.err
}

func names(entries []Entry) []string {
	ret := []string{}
	for _, e := range entries {
		ret = append(ret, e.Name)
	}
	return ret
}

func TestClean(t *testing.T) {
	testCases := map[string]string{
		"":             "",
		"/":            "",
		"a/b":          "a/b",
		"/a//b/":       "a/b",
		"../../etc":    "etc",
		"a/../b/./c":   "b/c",
		"papers/x.pdf": "papers/x.pdf",
	}

	for in, want := range testCases {
		assert.Equal(t, want, Clean(in), "input %q", in)
	}
}

func TestTree(t *testing.T) {
	tree := New(nil, clock.NewMock())

	require.NoError(t, tree.WriteFile("papers/2024/a.pdf", []byte("pdf")))
	require.NoError(t, tree.Mkdir("data"))
	require.NoError(t, tree.WriteFile("notes.txt", []byte("hello")))

	root, err := tree.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"data", "papers", "notes.txt"}, names(root))

	e, err := tree.Stat("/papers/2024/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, Entry{Path: "papers/2024/a.pdf", Name: "a.pdf", Size: 3, ModTime: clock.NewMock().Now()}, e)

	data, err := tree.ReadFile("notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = tree.ReadFile("papers")
	assert.ErrorIs(t, err, ErrIsDir)
	_, err = tree.List("notes.txt")
	assert.ErrorIs(t, err, ErrNotDir)
	assert.ErrorIs(t, tree.WriteFile("papers", nil), ErrIsDir)
	assert.ErrorIs(t, tree.Mkdir("notes.txt/sub"), ErrNotDir)

	require.NoError(t, tree.Remove("papers"))
	_, err = tree.Stat("papers/2024/a.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, tree.Remove("papers"), ErrNotFound)
	assert.ErrorIs(t, tree.Remove("/"), ErrRoot)
}

func TestTree_writeCopiesData(t *testing.T) {
	tree := New(nil, nil)

	buf := []byte("abc")
	require.NoError(t, tree.WriteFile("f", buf))
	buf[0] = 'x'

	got, err := tree.ReadFile("f")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestTree_walk(t *testing.T) {
	tree := New(nil, nil)
	require.NoError(t, tree.WriteFile("b/2.txt", nil))
	require.NoError(t, tree.WriteFile("b/1.txt", nil))
	require.NoError(t, tree.WriteFile("a.txt", nil))

	var paths []string
	require.NoError(t, tree.Walk("", func(e Entry) error {
		paths = append(paths, e.Path)
		return nil
	}))
	assert.Equal(t, []string{"b", "b/1.txt", "b/2.txt", "a.txt"}, paths)

	stop := errors.New("stop")
	assert.Equal(t, stop, tree.Walk("", func(e Entry) error { return stop }))
}

func TestTree_mirror(t *testing.T) {
	m := &fakeMirror{}
	tree := New(m, nil)

	require.NoError(t, tree.Mkdir("/data/"))
	require.NoError(t, tree.WriteFile("data/x.csv", []byte("1,2")))
	require.NoError(t, tree.Remove("data/x.csv"))

	assert.Equal(t, []mirrorCall{
		{"mkdir", "data"},
		{"write", "data/x.csv"},
		{"delete", "data/x.csv"},
	}, m.calls)

	assert.Error(t, tree.Remove("missing"))
	assert.Len(t, m.calls, 3, "failed operations are not mirrored")
}

func TestTree_mirrorFailure(t *testing.T) {
	m := &fakeMirror{err: errors.New("permission denied")}
	tree := New(m, nil)

	require.NoError(t, tree.WriteFile("x.txt", []byte("x")), "mirror failures are not returned")

	_, err := tree.Stat("x.txt")
	assert.NoError(t, err, "the tree keeps the change")
}

func TestDirMirror(t *testing.T) {
	dir := t.TempDir()
	m, err := NewDirMirror(filepath.Join(dir, "mirror"))
	require.NoError(t, err)

	tree := New(m, nil)
	require.NoError(t, tree.WriteFile("papers/a.txt", []byte("A")))
	require.NoError(t, tree.Mkdir("empty"))

	b, err := os.ReadFile(filepath.Join(m.Root, "papers", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "A", string(b))

	info, err := os.Stat(filepath.Join(m.Root, "empty"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, tree.Remove("papers"))
	_, err = os.Stat(filepath.Join(m.Root, "papers"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, m.DeleteEntry("missing"))
	assert.ErrorIs(t, m.DeleteEntry(""), ErrRoot)
}

func treePaths(t *testing.T, tree *Tree) []string {
	var ret []string
	require.NoError(t, tree.Walk("", func(e Entry) error {
		ret = append(ret, e.Path)
		return nil
	}))
	sort.Strings(ret)
	return ret
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "papers"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "papers", "a.txt"), []byte("A"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("h"), 0644))

	m := &fakeMirror{}
	tree := New(m, nil)

	w, err := NewWatcher(tree, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"papers", "papers/a.txt"}, treePaths(t, tree), "existing content is imported")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, 10*time.Millisecond)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("B"), 0644))
	require.Eventually(t, func() bool {
		data, err := tree.ReadFile("b.txt")
		return err == nil && string(data) == "B"
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "papers")))
	require.Eventually(t, func() bool {
		_, err := tree.Stat("papers")
		return errors.Is(err, ErrNotFound)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	assert.Empty(t, m.calls, "imported changes are not mirrored back")
}
