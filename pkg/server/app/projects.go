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
	"strings"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/helpers"
	"github.com/researchos/researchos/pkg/server/log"
	"gorm.io/gorm"
)

// CreateProject creates a project owned by the user
func (a *App) CreateProject(user database.User, name, description string) (database.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return database.Project{}, ErrProjectNameRequired
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.Project{}, err
	}

	project := database.Project{
		UUID:        uuid,
		UserID:      user.ID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := a.DB.Create(&project).Error; err != nil {
		return project, errors.Wrap(err, "inserting project")
	}

	return project, nil
}

// ListProjects returns the user's projects, most recently updated first
func (a *App) ListProjects(user database.User) ([]database.Project, error) {
	var projects []database.Project
	if err := a.DB.Where("user_id = ?", user.ID).Order("updated_at DESC, id DESC").Find(&projects).Error; err != nil {
		return nil, errors.Wrap(err, "finding projects")
	}

	return projects, nil
}

// UpdateProjectParams is the parameters for updating a project
type UpdateProjectParams struct {
	Name        *string
	Description *string
}

// UpdateProject updates the given fields of the project
func (a *App) UpdateProject(project database.Project, p UpdateProjectParams) (database.Project, error) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return project, ErrProjectNameRequired
		}
		project.Name = name
	}
	if p.Description != nil {
		project.Description = strings.TrimSpace(*p.Description)
	}

	if err := a.DB.Save(&project).Error; err != nil {
		return project, errors.Wrap(err, "updating the project")
	}

	return project, nil
}

// DeleteProject deletes the project with its notes, blocks and files.
// Stored blobs are removed after the rows; a failure to remove one is logged.
func (a *App) DeleteProject(ctx context.Context, project database.Project) error {
	var files []database.File

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_uuid = ?", project.UUID).Find(&files).Error; err != nil {
			return errors.Wrap(err, "finding files")
		}

		noteUUIDs := tx.Model(&database.Note{}).Select("uuid").Where("project_uuid = ?", project.UUID)
		if err := tx.Where("note_uuid IN (?)", noteUUIDs).Delete(&database.NoteBlock{}).Error; err != nil {
			return errors.Wrap(err, "deleting blocks")
		}
		if err := tx.Where("project_uuid = ?", project.UUID).Delete(&database.Note{}).Error; err != nil {
			return errors.Wrap(err, "deleting notes")
		}
		if err := tx.Where("project_uuid = ?", project.UUID).Delete(&database.File{}).Error; err != nil {
			return errors.Wrap(err, "deleting files")
		}
		if err := tx.Delete(&project).Error; err != nil {
			return errors.Wrap(err, "deleting project")
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		a.deleteBlob(ctx, f)
	}

	return nil
}

func (a *App) deleteBlob(ctx context.Context, f database.File) {
	if err := a.Blob.Delete(ctx, f.StorageKey); err != nil {
		log.WithFields(log.Fields{
			"file_uuid": f.UUID,
			"key":       f.StorageKey,
		}).ErrorWrap(err, "deleting blob")
	}
}
