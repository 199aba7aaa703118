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
	"context"
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/blob"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/helpers"
)

// MaxFileSize is the largest accepted upload
const MaxFileSize = 25 << 20

// FileUpload is an uploaded file
type FileUpload struct {
	Name        string
	Folder      string
	Size        int64
	ContentType string
	Body        io.Reader
}

// cleanFolder normalizes a virtual folder path to "/a/b" form. The root is "/".
func cleanFolder(folder string) string {
	folder = strings.TrimSpace(strings.ReplaceAll(folder, "\\", "/"))
	if folder == "" {
		return "/"
	}

	return path.Clean("/" + folder)
}

// UploadFile stores the file in the blob store and records it in the project
func (a *App) UploadFile(ctx context.Context, user database.User, project database.Project, f FileUpload) (database.File, error) {
	if f.Body == nil || strings.TrimSpace(f.Name) == "" {
		return database.File{}, ErrFileRequired
	}
	if f.Size > MaxFileSize {
		return database.File{}, ErrFileTooLarge
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.File{}, err
	}

	name := path.Base(strings.ReplaceAll(strings.TrimSpace(f.Name), "\\", "/"))
	key := blob.Key(project.UUID, uuid, name)

	url, err := a.Blob.Put(ctx, key, f.Body, f.Size, f.ContentType)
	if err != nil {
		return database.File{}, errors.Wrap(err, "storing blob")
	}

	file := database.File{
		UUID:        uuid,
		UserID:      user.ID,
		ProjectUUID: project.UUID,
		Name:        name,
		Folder:      cleanFolder(f.Folder),
		Size:        f.Size,
		ContentType: f.ContentType,
		StorageKey:  key,
		URL:         url,
	}
	if err := a.DB.Create(&file).Error; err != nil {
		a.deleteBlob(ctx, file)
		return database.File{}, errors.Wrap(err, "inserting file")
	}

	return file, nil
}

// ListFiles returns the files of the project ordered by folder and name
func (a *App) ListFiles(project database.Project) ([]database.File, error) {
	files := []database.File{}
	if err := a.DB.Where("project_uuid = ?", project.UUID).Order("folder ASC, name ASC").Find(&files).Error; err != nil {
		return nil, errors.Wrap(err, "finding files")
	}

	return files, nil
}

// DeleteFile deletes the file record. Removing the blob is best-effort.
func (a *App) DeleteFile(ctx context.Context, file database.File) error {
	if err := a.DB.Delete(&file).Error; err != nil {
		return errors.Wrap(err, "deleting file")
	}

	a.deleteBlob(ctx, file)

	return nil
}
