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
	"strings"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/helpers"
	"gorm.io/gorm"
)

// DefaultNoteTitle is the title of a note created without one
const DefaultNoteTitle = "Untitled"

// CreateNote creates a note at the end of the project
func (a *App) CreateNote(user database.User, project database.Project, title string) (database.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultNoteTitle
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.Note{}, err
	}

	tx := a.DB.Begin()

	var last struct{ Position *int }
	if err := tx.Model(&database.Note{}).Select("MAX(position) AS position").Where("project_uuid = ?", project.UUID).Scan(&last).Error; err != nil {
		tx.Rollback()
		return database.Note{}, errors.Wrap(err, "finding last position")
	}
	position := 0
	if last.Position != nil {
		position = *last.Position + 1
	}

	note := database.Note{
		UUID:        uuid,
		UserID:      user.ID,
		ProjectUUID: project.UUID,
		Title:       title,
		Position:    position,
	}
	if err := tx.Create(&note).Error; err != nil {
		tx.Rollback()
		return note, errors.Wrap(err, "inserting note")
	}

	tx.Commit()

	return note, nil
}

// ListNotes returns the notes of the project ordered by position
func (a *App) ListNotes(project database.Project) ([]database.Note, error) {
	var notes []database.Note
	if err := a.DB.Where("project_uuid = ?", project.UUID).Order("position ASC, id ASC").Find(&notes).Error; err != nil {
		return nil, errors.Wrap(err, "finding notes")
	}

	return notes, nil
}

// UpdateNoteParams is the parameters for updating a note
type UpdateNoteParams struct {
	Title    *string
	Position *int
}

// UpdateNote updates the given fields of the note
func (a *App) UpdateNote(note database.Note, p UpdateNoteParams) (database.Note, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			title = DefaultNoteTitle
		}
		note.Title = title
	}
	if p.Position != nil {
		note.Position = *p.Position
	}

	if err := a.DB.Save(&note).Error; err != nil {
		return note, errors.Wrap(err, "editing note")
	}

	return note, nil
}

// DeleteNote deletes the note and its blocks
func (a *App) DeleteNote(note database.Note) error {
	return a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_uuid = ?", note.UUID).Delete(&database.NoteBlock{}).Error; err != nil {
			return errors.Wrap(err, "deleting blocks")
		}
		if err := tx.Delete(&note).Error; err != nil {
			return errors.Wrap(err, "deleting note")
		}

		return nil
	})
}

// BlockParams is a block as sent by the client
type BlockParams struct {
	ID      string
	Header  string
	Content string
	Order   float64
}

// GetNoteBlocks returns the blocks of the note in ascending order. Blocks with
// equal order keep the position they were saved at.
func (a *App) GetNoteBlocks(note database.Note) ([]database.NoteBlock, error) {
	blocks := []database.NoteBlock{}
	if err := a.DB.Where("note_uuid = ?", note.UUID).Order("sort_order ASC, position ASC").Find(&blocks).Error; err != nil {
		return nil, errors.Wrap(err, "finding blocks")
	}

	return blocks, nil
}

func validateBlocks(blocks []BlockParams) error {
	seen := map[string]bool{}
	for _, b := range blocks {
		id := strings.TrimSpace(b.ID)
		if id == "" {
			return ErrBlockIDRequired
		}
		if seen[id] {
			return ErrDuplicateBlockID
		}
		seen[id] = true
	}

	return nil
}

// ReplaceNoteBlocks replaces every block of the note with the given list in
// one transaction
func (a *App) ReplaceNoteBlocks(note database.Note, blocks []BlockParams) ([]database.NoteBlock, error) {
	if err := validateBlocks(blocks); err != nil {
		return nil, err
	}

	ret := make([]database.NoteBlock, 0, len(blocks))
	err := a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_uuid = ?", note.UUID).Delete(&database.NoteBlock{}).Error; err != nil {
			return errors.Wrap(err, "deleting blocks")
		}

		for i, b := range blocks {
			ret = append(ret, database.NoteBlock{
				UUID:      strings.TrimSpace(b.ID),
				NoteUUID:  note.UUID,
				Header:    b.Header,
				Content:   b.Content,
				SortOrder: b.Order,
				Position:  i,
			})
		}
		if len(ret) > 0 {
			if err := tx.Create(&ret).Error; err != nil {
				return errors.Wrap(err, "inserting blocks")
			}
		}

		// touch the note
		if err := tx.Model(&note).Update("updated_at", a.Clock.Now()).Error; err != nil {
			return errors.Wrap(err, "touching note")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return ret, nil
}
