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

// Package notebook keeps the ordered blocks of a note in memory and saves
// them in the background
package notebook

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/clock"
	"github.com/researchos/researchos/pkg/server/log"
)

const (
	// DefaultHeader is the header of a new block
	DefaultHeader = "New block header name"
	// DefaultContent is the content of a new block
	DefaultContent = "<p></p>"
	// SaveDelay is how long the container waits after the last change
	// before saving
	SaveDelay = time.Second
)

var (
	// ErrBlockNotFound is returned for an unknown block id
	ErrBlockNotFound = errors.New("block not found")
	// ErrClosed is returned after the container is closed
	ErrClosed = errors.New("container is closed")
)

// Block is a unit of content in a note
type Block struct {
	ID      string  `json:"id"`
	Header  string  `json:"header"`
	Content string  `json:"content"`
	Order   float64 `json:"order"`
}

// Patch holds the fields to change in a block. Nil fields are kept.
type Patch struct {
	Header  *string
	Content *string
}

// Direction is a move within the sorted blocks
type Direction int

const (
	// Up moves a block towards the start
	Up Direction = iota
	// Down moves a block towards the end
	Down
)

// Store saves the whole block list of a note
type Store interface {
	SaveBlocks(noteID string, blocks []Block) error
}

// Sort returns a copy of blocks in ascending order. Blocks with equal order
// keep their relative position.
func Sort(blocks []Block) []Block {
	ret := make([]Block, len(blocks))
	copy(ret, blocks)

	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Order < ret[j].Order
	})

	return ret
}

// Options configure a container
type Options struct {
	// Clock schedules saves. Defaults to the real clock.
	Clock clock.Clock
	// Delay defaults to SaveDelay
	Delay time.Duration
	// Selection, if set, receives the block to edit after an insert
	Selection *Selection
	// NewID defaults to random UUIDs
	NewID func() string
}

// Container owns the blocks of one note. Each change reschedules a single
// save of the full list; the in-memory list stays the source of truth when
// a save fails.
type Container struct {
	noteID string
	store  Store
	clock  clock.Clock
	delay  time.Duration
	sel    *Selection
	newID  func() string

	mu      sync.Mutex
	blocks  []Block
	timer   clock.Timer
	version int
	saved   int
	closed  bool
	err     error

	// saveMu keeps writes in the order their snapshots were taken
	saveMu sync.Mutex
}

// New returns a container for the note holding the given blocks
func New(noteID string, blocks []Block, store Store, opts Options) *Container {
	c := &Container{
		noteID: noteID,
		store:  store,
		clock:  opts.Clock,
		delay:  opts.Delay,
		sel:    opts.Selection,
		newID:  opts.NewID,
		blocks: Sort(blocks),
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.delay == 0 {
		c.delay = SaveDelay
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}

	return c
}

// NoteID returns the id of the note
func (c *Container) NoteID() string {
	return c.noteID
}

// Blocks returns the blocks in display order
func (c *Container) Blocks() []Block {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Sort(c.blocks)
}

// Len returns the number of blocks
func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.blocks)
}

// CanDelete reports whether a block may be deleted. The last block never is.
func (c *Container) CanDelete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return !c.closed && len(c.blocks) > 1
}

// Dirty reports whether there are changes not yet saved
func (c *Container) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.version != c.saved
}

// Err returns the error of the latest save, if it failed
func (c *Container) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.err
}

func (c *Container) indexOf(id string) int {
	for i, b := range c.blocks {
		if b.ID == id {
			return i
		}
	}

	return -1
}

func (c *Container) newBlock(order float64) Block {
	return Block{
		ID:      c.newID(),
		Header:  DefaultHeader,
		Content: DefaultContent,
		Order:   order,
	}
}

// changed records a change and restarts the save timer. The caller must
// hold the lock.
func (c *Container) changed() {
	c.version++

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.clock.AfterFunc(c.delay, func() {
		if err := c.save(); err != nil {
			log.WithFields(log.Fields{
				"note":  c.noteID,
				"error": err.Error(),
			}).Warn("saving blocks")
		}
	})
}

// renumber sets the order of every block to its position, starting at 1.
// The caller must hold the lock.
func (c *Container) renumber() {
	for i := range c.blocks {
		c.blocks[i].Order = float64(i + 1)
	}
}

func (c *Container) focus(id string) {
	if c.sel != nil {
		c.sel.Set(c.noteID, id)
	}
}

// Append adds a block at the end. Its order is the block count plus one, or
// one more than the last order when the orders are sparse, so the new block
// always sorts last.
func (c *Container) Append() (Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Block{}, ErrClosed
	}

	order := float64(len(c.blocks) + 1)
	if n := len(c.blocks); n > 0 && c.blocks[n-1].Order >= order {
		order = c.blocks[n-1].Order + 1
	}

	b := c.newBlock(order)
	c.blocks = append(c.blocks, b)
	c.changed()
	c.focus(b.ID)

	return b, nil
}

// InsertAfter adds a block right after the given one and renumbers all
// blocks densely
func (c *Container) InsertAfter(id string) (Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Block{}, ErrClosed
	}

	idx := c.indexOf(id)
	if idx == -1 {
		return Block{}, errors.Wrap(ErrBlockNotFound, id)
	}

	b := c.newBlock(float64(idx) + 1.5)

	blocks := make([]Block, 0, len(c.blocks)+1)
	blocks = append(blocks, c.blocks[:idx+1]...)
	blocks = append(blocks, b)
	blocks = append(blocks, c.blocks[idx+1:]...)
	c.blocks = blocks

	c.renumber()
	c.changed()
	c.focus(b.ID)

	return c.blocks[idx+1], nil
}

// Update merges the patch into the block. It reports whether anything
// changed.
func (c *Container) Update(id string, p Patch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || (p.Header == nil && p.Content == nil) {
		return false
	}

	idx := c.indexOf(id)
	if idx == -1 {
		return false
	}

	if p.Header != nil {
		c.blocks[idx].Header = *p.Header
	}
	if p.Content != nil {
		c.blocks[idx].Content = *p.Content
	}
	c.changed()

	return true
}

// Delete removes the block unless it is the only one
func (c *Container) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || len(c.blocks) <= 1 {
		return false
	}

	idx := c.indexOf(id)
	if idx == -1 {
		return false
	}

	c.blocks = append(c.blocks[:idx], c.blocks[idx+1:]...)
	c.changed()

	if c.sel != nil {
		if noteID, blockID := c.sel.Active(); noteID == c.noteID && blockID == id {
			c.sel.Clear()
		}
	}

	return true
}

// Reorder swaps the order of the block with its neighbour in display order.
// Moving the first block up or the last block down does nothing.
func (c *Container) Reorder(id string, d Direction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	// the list is kept in display order so positions match the sorted view
	c.blocks = Sort(c.blocks)

	idx := c.indexOf(id)
	if idx == -1 {
		return false
	}

	other := idx - 1
	if d == Down {
		other = idx + 1
	}
	if other < 0 || other >= len(c.blocks) {
		return false
	}

	a, b := &c.blocks[idx], &c.blocks[other]
	a.Order, b.Order = b.Order, a.Order
	c.blocks[idx], c.blocks[other] = c.blocks[other], c.blocks[idx]

	c.changed()

	return true
}

// save writes the current list if it has unsaved changes
func (c *Container) save() error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	if c.version == c.saved {
		c.mu.Unlock()
		return nil
	}
	version := c.version
	blocks := Sort(c.blocks)
	c.mu.Unlock()

	err := c.store.SaveBlocks(c.noteID, blocks)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.err = err
	if err != nil {
		return errors.Wrap(err, "saving blocks")
	}
	c.saved = version

	return nil
}

// Flush cancels the pending save and saves now
func (c *Container) Flush() error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	return c.save()
}

// Close cancels the pending save. Changes made since the last save are not
// written; call Flush first to keep them.
func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.closed = true
}
