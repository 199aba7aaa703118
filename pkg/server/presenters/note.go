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

package presenters

import (
	"time"

	"github.com/researchos/researchos/pkg/server/database"
)

// Note is a result of PresentNote
type Note struct {
	UUID        string    `json:"id"`
	ProjectUUID string    `json:"projectId"`
	Title       string    `json:"title"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PresentNote presents note
func PresentNote(note database.Note) Note {
	return Note{
		UUID:        note.UUID,
		ProjectUUID: note.ProjectUUID,
		Title:       note.Title,
		Position:    note.Position,
		CreatedAt:   FormatTS(note.CreatedAt),
		UpdatedAt:   FormatTS(note.UpdatedAt),
	}
}

// PresentNotes presents notes
func PresentNotes(notes []database.Note) []Note {
	ret := []Note{}

	for _, note := range notes {
		ret = append(ret, PresentNote(note))
	}

	return ret
}

// Block is a result of PresentBlock
type Block struct {
	UUID    string  `json:"id"`
	Header  string  `json:"header"`
	Content string  `json:"content"`
	Order   float64 `json:"order"`
}

// PresentBlocks presents blocks in the given order
func PresentBlocks(blocks []database.NoteBlock) []Block {
	ret := []Block{}

	for _, b := range blocks {
		ret = append(ret, Block{
			UUID:    b.UUID,
			Header:  b.Header,
			Content: b.Content,
			Order:   b.SortOrder,
		})
	}

	return ret
}
