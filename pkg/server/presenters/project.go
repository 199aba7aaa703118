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

// Project is a result of PresentProject
type Project struct {
	UUID        string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PresentProject presents a project
func PresentProject(project database.Project) Project {
	return Project{
		UUID:        project.UUID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   FormatTS(project.CreatedAt),
		UpdatedAt:   FormatTS(project.UpdatedAt),
	}
}

// PresentProjects presents projects
func PresentProjects(projects []database.Project) []Project {
	ret := []Project{}

	for _, p := range projects {
		ret = append(ret, PresentProject(p))
	}

	return ret
}
