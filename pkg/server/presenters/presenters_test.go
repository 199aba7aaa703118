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
	"testing"
	"time"

	"github.com/researchos/researchos/pkg/assert"
	"github.com/researchos/researchos/pkg/server/database"
)

func TestFormatTS(t *testing.T) {
	loc := time.FixedZone("IST", 5*60*60+30*60)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 1500, loc)

	got := FormatTS(ts)
	assert.Equal(t, got.Location(), time.UTC, "location mismatch")
	assert.Equal(t, got.Equal(time.Date(2025, 3, 1, 4, 30, 0, 2000, time.UTC)), true, "time mismatch")
}

func TestPresentUser(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	user := database.User{
		Model:         database.Model{ID: 7, CreatedAt: created},
		UUID:          "u1",
		Name:          "Dr. Jane Smith",
		Email:         "jane@uni.edu",
		EmailVerified: true,
		Password:      database.ToNullString("hash"),
		VerifyCode:    database.ToNullString("123456"),
		Institution:   "IIT Madras",
		Country:       "India",
	}

	got := PresentUser(user)
	assert.DeepEqual(t, got, User{
		UUID:          "u1",
		Name:          "Dr. Jane Smith",
		Email:         "jane@uni.edu",
		EmailVerified: true,
		Institution:   "IIT Madras",
		Country:       "India",
		CreatedAt:     created,
	}, "result mismatch")

	assert.DeepEqual(t, PresentRegisteredUser(user), RegisteredUser{UUID: "u1", Name: "Dr. Jane Smith", Email: "jane@uni.edu"}, "registered user mismatch")
}

func TestPresentBlocks(t *testing.T) {
	blocks := []database.NoteBlock{
		{UUID: "a", Header: "Intro", Content: "<p>x</p>", SortOrder: 1, Position: 0},
		{UUID: "b", Header: "Methods", SortOrder: 2.5, Position: 1},
	}

	got := PresentBlocks(blocks)
	assert.DeepEqual(t, got, []Block{
		{UUID: "a", Header: "Intro", Content: "<p>x</p>", Order: 1},
		{UUID: "b", Header: "Methods", Order: 2.5},
	}, "result mismatch")

	assert.DeepEqual(t, PresentBlocks(nil), []Block{}, "empty result should be a list")
}

func TestPresentFiles(t *testing.T) {
	files := []database.File{
		{UUID: "f1", Name: "cv.csv", Size: 12, ContentType: "text/csv", URL: "/uploads/k", Folder: "/raw", StorageKey: "k"},
	}

	got := PresentFiles(files)
	assert.Equal(t, len(got), 1, "count mismatch")
	assert.Equal(t, got[0], File{UUID: "f1", Name: "cv.csv", Size: 12, Type: "text/csv", URL: "/uploads/k", Folder: "/raw", CreatedAt: FormatTS(time.Time{})}, "file mismatch")
}

func TestPresentProjectsAndNotes(t *testing.T) {
	projects := PresentProjects([]database.Project{{UUID: "p1", Name: "study", Description: "d"}})
	assert.Equal(t, projects[0].UUID, "p1", "project uuid mismatch")
	assert.Equal(t, projects[0].Description, "d", "description mismatch")

	notes := PresentNotes([]database.Note{{UUID: "n1", ProjectUUID: "p1", Title: "Untitled", Position: 2}})
	assert.Equal(t, notes[0].ProjectUUID, "p1", "project uuid mismatch")
	assert.Equal(t, notes[0].Position, 2, "position mismatch")

	assert.DeepEqual(t, PresentNotes(nil), []Note{}, "empty result should be a list")
}
