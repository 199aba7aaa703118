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

// Package blocks implements the commands that read and edit the blocks of
// a note
package blocks

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/client"
	"github.com/researchos/researchos/pkg/cli/context"
	"github.com/researchos/researchos/pkg/cli/infra"
	"github.com/researchos/researchos/pkg/cli/log"
	"github.com/researchos/researchos/pkg/cli/output"
	"github.com/researchos/researchos/pkg/cli/ui"
	"github.com/researchos/researchos/pkg/cli/utils"
	"github.com/researchos/researchos/pkg/notebook"
	"github.com/spf13/cobra"
)

var example = `
  # list the blocks of a note
  researchos blocks <note-id>

  # print the second block
  researchos blocks show <note-id> 2

  # add a block after the first one, writing the content in your editor
  researchos blocks add <note-id> --after 1 --header "Method"

  # edit the content of the second block
  researchos blocks edit <note-id> 2

  # move the third block up
  researchos blocks mv <note-id> 3 up

  # remove the third block
  researchos blocks rm <note-id> 3`

var (
	// ErrLastBlock is returned when removing the only block of a note
	ErrLastBlock = errors.New("a note keeps at least one block")
	// ErrMoveOutOfRange is returned when moving the first block up or the
	// last block down
	ErrMoveOutOfRange = errors.New("the block is already at the edge of the note")
)

var (
	afterFlag      string
	addHeaderFlag  string
	editHeaderFlag string
	contentFlag    string
	yesFlag        bool
)

// NewCmd returns a new blocks command
func NewCmd(ctx context.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "blocks <note-id>",
		Aliases: []string{"b"},
		Short:   "List the blocks of a note",
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    newListRun(ctx),
	}

	show := &cobra.Command{
		Use:   "show <note-id> <n>",
		Short: "Print a block",
		Args:  cobra.ExactArgs(2),
		RunE:  newShowRun(ctx),
	}

	add := &cobra.Command{
		Use:   "add <note-id>",
		Short: "Add a block",
		Args:  cobra.ExactArgs(1),
		RunE:  newAddRun(ctx),
	}
	add.Flags().StringVar(&afterFlag, "after", "", "position of the block to insert after (defaults to the end)")
	add.Flags().StringVar(&addHeaderFlag, "header", notebook.DefaultHeader, "header of the block")
	add.Flags().StringVarP(&contentFlag, "content", "c", "", "content of the block (opens the editor if omitted)")

	edit := &cobra.Command{
		Use:   "edit <note-id> <n>",
		Short: "Edit a block",
		Args:  cobra.ExactArgs(2),
		RunE:  newEditRun(ctx),
	}
	edit.Flags().StringVar(&editHeaderFlag, "header", "", "new header")
	edit.Flags().StringVarP(&contentFlag, "content", "c", "", "new content (opens the editor if neither flag is given)")

	mv := &cobra.Command{
		Use:       "mv <note-id> <n> up|down",
		Short:     "Move a block up or down",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"up", "down"},
		RunE:      newMoveRun(ctx),
	}

	rm := &cobra.Command{
		Use:     "rm <note-id> <n>",
		Aliases: []string{"remove"},
		Short:   "Remove a block",
		Args:    cobra.ExactArgs(2),
		RunE:    newRemoveRun(ctx),
	}
	rm.Flags().BoolVarP(&yesFlag, "yes", "y", false, "remove without confirmation")

	cmd.AddCommand(show, add, edit, mv, rm)

	return cmd
}

// open loads the blocks of the note into a container that saves through
// the API
func open(ctx context.Ctx, noteID string) (*notebook.Container, error) {
	if err := infra.RequireLogin(ctx); err != nil {
		return nil, err
	}

	blocks, err := client.GetBlocks(ctx, noteID)
	if err != nil {
		return nil, errors.New(client.Message(err))
	}

	return notebook.New(noteID, blocks, client.BlockStore{Ctx: ctx}, notebook.Options{Clock: ctx.Clock}), nil
}

// finish saves the pending changes and closes the container
func finish(c *notebook.Container) error {
	defer c.Close()

	if err := c.Flush(); err != nil {
		return errors.Errorf("saving note %s: %s", c.NoteID(), client.Message(err))
	}

	return nil
}

// blockAt returns the block at the 1-based position given as an argument
func blockAt(c *notebook.Container, arg string) (notebook.Block, error) {
	blocks := c.Blocks()

	idx, err := utils.ParsePosition(arg, len(blocks))
	if err != nil {
		return notebook.Block{}, errors.Wrap(err, "finding block")
	}

	return blocks[idx], nil
}

func list(c *notebook.Container, w io.Writer) error {
	for i, b := range c.Blocks() {
		text, err := ui.HTMLToText(b.Content)
		if err != nil {
			return errors.Wrapf(err, "reading block %d", i+1)
		}

		output.BlockLine(w, i+1, b, text)
	}

	return nil
}

// add appends a block, or inserts it after the block at the given position,
// and fills it
func add(c *notebook.Container, after, header string, content *string) (notebook.Block, error) {
	var b notebook.Block
	var err error

	if after == "" {
		b, err = c.Append()
	} else {
		var prev notebook.Block
		if prev, err = blockAt(c, after); err != nil {
			return notebook.Block{}, err
		}
		b, err = c.InsertAfter(prev.ID)
	}
	if err != nil {
		return notebook.Block{}, errors.Wrap(err, "adding block")
	}

	p := notebook.Patch{Content: content}
	if header != b.Header {
		p.Header = &header
	}
	c.Update(b.ID, p)

	return b, nil
}

func move(c *notebook.Container, arg, direction string) error {
	b, err := blockAt(c, arg)
	if err != nil {
		return err
	}

	var d notebook.Direction
	switch direction {
	case "up":
		d = notebook.Up
	case "down":
		d = notebook.Down
	default:
		return errors.Errorf("invalid direction '%s'. Use up or down", direction)
	}

	if !c.Reorder(b.ID, d) {
		return ErrMoveOutOfRange
	}

	return nil
}

func remove(c *notebook.Container, arg string) error {
	b, err := blockAt(c, arg)
	if err != nil {
		return err
	}

	if !c.CanDelete() || !c.Delete(b.ID) {
		return ErrLastBlock
	}

	return nil
}

// editContent opens the editor on the text of the block and returns the new
// content
func editContent(ctx context.Ctx, b notebook.Block) (string, error) {
	before, err := ui.HTMLToText(b.Content)
	if err != nil {
		return "", errors.Wrap(err, "reading block")
	}

	fpath, err := ui.GetTmpContentPath(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting temporarily content file path")
	}

	after, err := ui.GetEditorInput(ctx, fpath, before)
	if err != nil {
		return "", errors.Wrap(err, "getting editor input")
	}

	ui.PrintDiff(color.Output, before, after)

	return ui.TextToHTML(after), nil
}

func newListRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := open(ctx, args[0])
		if err != nil {
			return err
		}
		defer c.Close()

		return list(c, os.Stdout)
	}
}

func newShowRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := open(ctx, args[0])
		if err != nil {
			return err
		}
		defer c.Close()

		b, err := blockAt(c, args[1])
		if err != nil {
			return err
		}

		text, err := ui.HTMLToText(b.Content)
		if err != nil {
			return errors.Wrap(err, "reading block")
		}

		output.BlockContent(os.Stdout, b, text)

		return nil
	}
}

func newAddRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := open(ctx, args[0])
		if err != nil {
			return err
		}

		var content string
		if cmd.Flags().Changed("content") {
			content = ui.TextToHTML(contentFlag)
		} else {
			content, err = editContent(ctx, notebook.Block{Content: notebook.DefaultContent})
			if err != nil {
				c.Close()
				return err
			}
		}

		b, err := add(c, afterFlag, addHeaderFlag, &content)
		if err != nil {
			c.Close()
			return err
		}
		if err := finish(c); err != nil {
			return err
		}

		log.Successf("added block %s\n", b.ID)

		return nil
	}
}

func newEditRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := open(ctx, args[0])
		if err != nil {
			return err
		}

		b, err := blockAt(c, args[1])
		if err != nil {
			c.Close()
			return err
		}

		var p notebook.Patch
		if cmd.Flags().Changed("header") {
			p.Header = &editHeaderFlag
		}
		if cmd.Flags().Changed("content") {
			content := ui.TextToHTML(contentFlag)
			p.Content = &content
		}
		if p.Header == nil && p.Content == nil {
			content, err := editContent(ctx, b)
			if err != nil {
				c.Close()
				return err
			}
			p.Content = &content
		}

		c.Update(b.ID, p)
		if err := finish(c); err != nil {
			return err
		}

		log.Successf("updated block %s\n", args[1])

		return nil
	}
}

func newMoveRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := open(ctx, args[0])
		if err != nil {
			return err
		}

		if err := move(c, args[1], args[2]); err != nil {
			c.Close()
			return err
		}
		if err := finish(c); err != nil {
			return err
		}

		log.Successf("moved block %s %s\n", args[1], args[2])

		return nil
	}
}

func newRemoveRun(ctx context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, err := open(ctx, args[0])
		if err != nil {
			return err
		}

		b, err := blockAt(c, args[1])
		if err != nil {
			c.Close()
			return err
		}

		if !yesFlag {
			ok, err := ui.Confirm(fmt.Sprintf("remove block %s \"%s\"?", args[1], b.Header), false)
			if err != nil {
				c.Close()
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				c.Close()
				log.Warnf("aborted by user\n")
				return nil
			}
		}

		if err := remove(c, args[1]); err != nil {
			c.Close()
			return err
		}
		if err := finish(c); err != nil {
			return err
		}

		log.Successf("removed block %s\n", args[1])

		return nil
	}
}
