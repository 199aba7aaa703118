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

// File is a result of PresentFile
type File struct {
	UUID      string    `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	Folder    string    `json:"folder"`
	CreatedAt time.Time `json:"createdAt"`
}

// PresentFile presents a file
func PresentFile(f database.File) File {
	return File{
		UUID:      f.UUID,
		Name:      f.Name,
		Size:      f.Size,
		Type:      f.ContentType,
		URL:       f.URL,
		Folder:    f.Folder,
		CreatedAt: FormatTS(f.CreatedAt),
	}
}

// PresentFiles presents files
func PresentFiles(files []database.File) []File {
	ret := []File{}

	for _, f := range files {
		ret = append(ret, PresentFile(f))
	}

	return ret
}
