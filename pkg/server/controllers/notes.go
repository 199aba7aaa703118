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

package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/researchos/researchos/pkg/server/app"
	"github.com/researchos/researchos/pkg/server/context"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/operations"
	"github.com/researchos/researchos/pkg/server/presenters"
)

// NewNotes creates a new Notes controller
func NewNotes(app *app.App) *Notes {
	return &Notes{
		app: app,
	}
}

// Notes is a note controller
type Notes struct {
	app *app.App
}

func findNote(w http.ResponseWriter, r *http.Request, a *app.App) (database.Note, bool) {
	user := context.User(r.Context())
	if user == nil {
		handleJSONError(w, app.ErrLoginRequired, "no authenticated user found")
		return database.Note{}, false
	}

	uuid := mux.Vars(r)["noteUUID"]
	note, ok, err := operations.GetNote(a.DB, uuid, user)
	if err != nil {
		handleJSONError(w, err, "getting note")
		return database.Note{}, false
	}
	if !ok {
		handleJSONError(w, app.ErrNoteNotFound, "note not found")
		return database.Note{}, false
	}

	return note, true
}

type createNotePayload struct {
	Title string `schema:"title" json:"title"`
}

// NoteResponse wraps a single note
type NoteResponse struct {
	Note presenters.Note `json:"note"`
}

// Create adds a note at the end of the project
func (n *Notes) Create(w http.ResponseWriter, r *http.Request) {
	user, project, ok := findProject(w, r, n.app)
	if !ok {
		return
	}

	var params createNotePayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	note, err := n.app.CreateNote(user, project, params.Title)
	if err != nil {
		handleJSONError(w, err, "creating note")
		return
	}

	respondJSON(w, http.StatusCreated, NoteResponse{
		Note: presenters.PresentNote(note),
	})
}

// NotesResponse wraps a list of notes
type NotesResponse struct {
	Notes []presenters.Note `json:"notes"`
}

// Index lists the notes of a project by position
func (n *Notes) Index(w http.ResponseWriter, r *http.Request) {
	_, project, ok := findProject(w, r, n.app)
	if !ok {
		return
	}

	notes, err := n.app.ListNotes(project)
	if err != nil {
		handleJSONError(w, err, "listing notes")
		return
	}

	respondJSON(w, http.StatusOK, NotesResponse{
		Notes: presenters.PresentNotes(notes),
	})
}

// Show returns a single note
func (n *Notes) Show(w http.ResponseWriter, r *http.Request) {
	note, ok := findNote(w, r, n.app)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, NoteResponse{
		Note: presenters.PresentNote(note),
	})
}

type updateNotePayload struct {
	Title    *string `schema:"title" json:"title"`
	Position *int    `schema:"position" json:"position"`
}

// Update renames or moves a note
func (n *Notes) Update(w http.ResponseWriter, r *http.Request) {
	note, ok := findNote(w, r, n.app)
	if !ok {
		return
	}

	var params updateNotePayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	note, err := n.app.UpdateNote(note, app.UpdateNoteParams{
		Title:    params.Title,
		Position: params.Position,
	})
	if err != nil {
		handleJSONError(w, err, "updating note")
		return
	}

	respondJSON(w, http.StatusOK, NoteResponse{
		Note: presenters.PresentNote(note),
	})
}

// Delete removes a note with its blocks
func (n *Notes) Delete(w http.ResponseWriter, r *http.Request) {
	note, ok := findNote(w, r, n.app)
	if !ok {
		return
	}

	if err := n.app.DeleteNote(note); err != nil {
		handleJSONError(w, err, "deleting note")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BlocksResponse wraps the ordered blocks of a note
type BlocksResponse struct {
	Blocks []presenters.Block `json:"blocks"`
}

// GetBlocks returns the blocks of a note in order
func (n *Notes) GetBlocks(w http.ResponseWriter, r *http.Request) {
	note, ok := findNote(w, r, n.app)
	if !ok {
		return
	}

	blocks, err := n.app.GetNoteBlocks(note)
	if err != nil {
		handleJSONError(w, err, "getting blocks")
		return
	}

	respondJSON(w, http.StatusOK, BlocksResponse{
		Blocks: presenters.PresentBlocks(blocks),
	})
}

type blockPayload struct {
	ID      string  `json:"id"`
	Header  string  `json:"header"`
	Content string  `json:"content"`
	Order   float64 `json:"order"`
}

type putBlocksPayload struct {
	Blocks []blockPayload `json:"blocks"`
}

// PutBlocks replaces the whole block list of a note
func (n *Notes) PutBlocks(w http.ResponseWriter, r *http.Request) {
	note, ok := findNote(w, r, n.app)
	if !ok {
		return
	}

	var params putBlocksPayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	blocks := make([]app.BlockParams, 0, len(params.Blocks))
	for _, b := range params.Blocks {
		blocks = append(blocks, app.BlockParams{
			ID:      b.ID,
			Header:  b.Header,
			Content: b.Content,
			Order:   b.Order,
		})
	}

	saved, err := n.app.ReplaceNoteBlocks(note, blocks)
	if err != nil {
		handleJSONError(w, err, "replacing blocks")
		return
	}

	respondJSON(w, http.StatusOK, BlocksResponse{
		Blocks: presenters.PresentBlocks(saved),
	})
}
