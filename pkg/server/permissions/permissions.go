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

// Package permissions decides who may access a resource. Every resource is
// visible to its owner only.
package permissions

import (
	"github.com/researchos/researchos/pkg/server/database"
)

func isOwner(user *database.User, ownerID int) bool {
	if user == nil {
		return false
	}
	if ownerID == 0 {
		return false
	}

	return ownerID == user.ID
}

// ViewProject checks if the given user can view the given project
func ViewProject(user *database.User, project database.Project) bool {
	return isOwner(user, project.UserID)
}

// ViewNote checks if the given user can view the given note
func ViewNote(user *database.User, note database.Note) bool {
	return isOwner(user, note.UserID)
}

// ViewFile checks if the given user can view the given file
func ViewFile(user *database.User, file database.File) bool {
	return isOwner(user, file.UserID)
}
