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
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/app"
	"github.com/researchos/researchos/pkg/server/context"
	"github.com/researchos/researchos/pkg/server/operations"
	"github.com/researchos/researchos/pkg/server/presenters"
)

// multipartOverhead is the room left for the form fields around the file
const multipartOverhead = 1 << 20

// NewFiles creates a new Files controller
func NewFiles(app *app.App) *Files {
	return &Files{
		app: app,
	}
}

// Files is a file controller
type Files struct {
	app *app.App
}

// FileResponse wraps a single file
type FileResponse struct {
	File presenters.File `json:"file"`
}

// Upload stores a multipart file in the project
func (f *Files) Upload(w http.ResponseWriter, r *http.Request) {
	user, project, ok := findProject(w, r, f.app)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, app.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handleJSONError(w, app.ErrFileTooLarge, "parsing multipart form")
			return
		}

		handleJSONError(w, app.ErrFileRequired, "parsing multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	body, header, err := r.FormFile("file")
	if err != nil {
		handleJSONError(w, app.ErrFileRequired, "reading file")
		return
	}
	defer body.Close()

	file, err := f.app.UploadFile(r.Context(), user, project, app.FileUpload{
		Name:        header.Filename,
		Folder:      r.FormValue("folder"),
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        body,
	})
	if err != nil {
		handleJSONError(w, err, "uploading file")
		return
	}

	respondJSON(w, http.StatusCreated, FileResponse{
		File: presenters.PresentFile(file),
	})
}

// FilesResponse wraps a list of files
type FilesResponse struct {
	Files []presenters.File `json:"files"`
}

// Index lists the files of a project
func (f *Files) Index(w http.ResponseWriter, r *http.Request) {
	_, project, ok := findProject(w, r, f.app)
	if !ok {
		return
	}

	files, err := f.app.ListFiles(project)
	if err != nil {
		handleJSONError(w, err, "listing files")
		return
	}

	respondJSON(w, http.StatusOK, FilesResponse{
		Files: presenters.PresentFiles(files),
	})
}

// Delete removes a file
func (f *Files) Delete(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		handleJSONError(w, app.ErrLoginRequired, "no authenticated user found")
		return
	}

	file, ok, err := operations.GetFile(f.app.DB, mux.Vars(r)["fileUUID"], user)
	if err != nil {
		handleJSONError(w, err, "getting file")
		return
	}
	if !ok {
		handleJSONError(w, app.ErrFileNotFound, "file not found")
		return
	}

	if err := f.app.DeleteFile(r.Context(), file); err != nil {
		handleJSONError(w, err, "deleting file")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
