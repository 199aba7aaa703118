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

// Package operations looks up resources on behalf of a user. A resource that
// does not exist and one the user may not view are indistinguishable.
package operations

import (
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/helpers"
	"github.com/researchos/researchos/pkg/server/permissions"
	"gorm.io/gorm"
)

// GetProject retrieves a project for the given user
func GetProject(db *gorm.DB, uuid string, user *database.User) (database.Project, bool, error) {
	zeroProject := database.Project{}
	if !helpers.ValidateUUID(uuid) {
		return zeroProject, false, nil
	}

	var project database.Project
	err := db.Where("uuid = ?", uuid).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zeroProject, false, nil
	} else if err != nil {
		return zeroProject, false, errors.Wrap(err, "finding project")
	}

	if ok := permissions.ViewProject(user, project); !ok {
		return zeroProject, false, nil
	}

	return project, true, nil
}

// GetNote retrieves a note for the given user
func GetNote(db *gorm.DB, uuid string, user *database.User) (database.Note, bool, error) {
	zeroNote := database.Note{}
	if !helpers.ValidateUUID(uuid) {
		return zeroNote, false, nil
	}

	var note database.Note
	err := db.Where("uuid = ?", uuid).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zeroNote, false, nil
	} else if err != nil {
		return zeroNote, false, errors.Wrap(err, "finding note")
	}

	if ok := permissions.ViewNote(user, note); !ok {
		return zeroNote, false, nil
	}

	return note, true, nil
}

// GetFile retrieves a file for the given user
func GetFile(db *gorm.DB, uuid string, user *database.User) (database.File, bool, error) {
	zeroFile := database.File{}
	if !helpers.ValidateUUID(uuid) {
		return zeroFile, false, nil
	}

	var file database.File
	err := db.Where("uuid = ?", uuid).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zeroFile, false, nil
	} else if err != nil {
		return zeroFile, false, errors.Wrap(err, "finding file")
	}

	if ok := permissions.ViewFile(user, file); !ok {
		return zeroFile, false, nil
	}

	return file, true, nil
}
