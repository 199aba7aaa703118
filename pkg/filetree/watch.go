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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/researchos/researchos/pkg/server/log"
)

// DefaultPollInterval is how often the folder is scanned for changes
const DefaultPollInterval = time.Second

// Watcher imports changes made in a local folder into a tree. Imported
// changes are not sent back to the tree's mirror.
type Watcher struct {
	tree *Tree
	root string
	w    *watcher.Watcher
}

// NewWatcher starts tracking the folder and imports its current content
func NewWatcher(t *Tree, dir string) (*Watcher, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", dir)
	}

	w := watcher.New()
	w.IgnoreHiddenFiles(true)
	w.FilterOps(watcher.Create, watcher.Write, watcher.Remove, watcher.Rename, watcher.Move)

	if err := w.AddRecursive(root); err != nil {
		return nil, errors.Wrapf(err, "watching %s", root)
	}

	ret := &Watcher{tree: t, root: root, w: w}
	for p, info := range w.WatchedFiles() {
		if p == root {
			continue
		}
		ret.importPath(p, info.IsDir())
	}

	return ret, nil
}

// rel maps an absolute path in the folder to a tree path
func (w *Watcher) rel(p string) (string, bool) {
	r, err := filepath.Rel(w.root, p)
	if err != nil || r == "." || strings.HasPrefix(r, "..") {
		return "", false
	}

	return Clean(filepath.ToSlash(r)), true
}

func (w *Watcher) importPath(p string, isDir bool) {
	rel, ok := w.rel(p)
	if !ok {
		return
	}

	var err error
	if isDir {
		err = w.tree.mkdir(rel)
	} else {
		var data []byte
		data, err = os.ReadFile(p)
		if err == nil {
			err = w.tree.writeFile(rel, data)
		}
	}
	if err != nil {
		log.WithFields(log.Fields{
			"path":  rel,
			"error": err.Error(),
		}).Warn("importing file")
	}
}

func (w *Watcher) removePath(p string) {
	rel, ok := w.rel(p)
	if !ok {
		return
	}

	if err := w.tree.remove(rel); err != nil && !errors.Is(err, ErrNotFound) {
		log.WithFields(log.Fields{
			"path":  rel,
			"error": err.Error(),
		}).Warn("removing imported file")
	}
}

func (w *Watcher) handle(e watcher.Event) {
	switch e.Op {
	case watcher.Create, watcher.Write:
		w.importPath(e.Path, e.IsDir())
	case watcher.Remove:
		w.removePath(e.Path)
	case watcher.Rename, watcher.Move:
		w.removePath(e.OldPath)
		w.importPath(e.Path, e.IsDir())
	}
}

// Run applies changes until ctx is done
func (w *Watcher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.w.Start(interval)
	}()
	w.w.Wait()
	defer w.w.Close()

	for {
		select {
		case e := <-w.w.Event:
			w.handle(e)
		case err := <-w.w.Error:
			log.WithFields(log.Fields{"error": err.Error()}).Warn("watching folder")
		case err := <-errCh:
			if err != nil {
				return errors.Wrap(err, "starting watcher")
			}
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// Watch imports the folder into the tree and keeps it in sync until ctx is
// done
func Watch(ctx context.Context, t *Tree, dir string, interval time.Duration) error {
	w, err := NewWatcher(t, dir)
	if err != nil {
		return err
	}

	return w.Run(ctx, interval)
}
