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

package database

import (
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a model for a user. VerifyCode and VerifyExpiry are either both set
// or both empty.
type User struct {
	Model
	UUID          string     `json:"uuid" gorm:"type:text;uniqueIndex"`
	Name          string     `json:"name"`
	Email         string     `json:"email" gorm:"type:text;uniqueIndex"`
	Password      NullString `json:"-"`
	EmailVerified bool       `json:"email_verified" gorm:"default:false"`
	VerifyCode    NullString `json:"-"`
	VerifyExpiry  *time.Time `json:"-"`
	CodeIssuedAt  *time.Time `json:"-"`
	LastLoginAt   *time.Time `json:"-"`

	Institution  string `json:"institution"`
	Department   string `json:"department"`
	Role         string `json:"role"`
	ResearchArea string `json:"research_area"`
	Country      string `json:"country"`
	State        string `json:"state"`
	City         string `json:"city"`
	OrcidID      string `json:"orcid_id"`
}

// HasPendingCode reports whether a verification code is outstanding
func (u User) HasPendingCode() bool {
	return u.VerifyCode.Valid && u.VerifyExpiry != nil
}

// Session represents a user session
type Session struct {
	Model
	UserID     int    `gorm:"index"`
	Key        string `gorm:"index"`
	LastUsedAt time.Time
	ExpiresAt  time.Time
}

// Project is a model for a research project owned by a single user
type Project struct {
	Model
	UUID        string `json:"uuid" gorm:"type:text;uniqueIndex"`
	UserID      int    `json:"user_id" gorm:"index"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Notes       []Note `json:"notes" gorm:"foreignKey:ProjectUUID;references:UUID"`
}

// Note is a model for a notebook page within a project
type Note struct {
	Model
	UUID        string      `json:"uuid" gorm:"type:text;uniqueIndex"`
	UserID      int         `json:"user_id" gorm:"index"`
	ProjectUUID string      `json:"project_uuid" gorm:"type:text;index"`
	Title       string      `json:"title"`
	Position    int         `json:"position"`
	Blocks      []NoteBlock `json:"blocks" gorm:"foreignKey:NoteUUID;references:UUID"`
}

// NoteBlock is a model for a block of a note. Blocks are read in
// ascending SortOrder with ties broken by Position, the index at which
// the block was saved.
type NoteBlock struct {
	Model
	UUID      string  `json:"uuid" gorm:"type:text;index"`
	NoteUUID  string  `json:"note_uuid" gorm:"type:text;index"`
	Header    string  `json:"header"`
	Content   string  `json:"content"`
	SortOrder float64 `json:"order"`
	Position  int     `json:"-"`
}

// File is a model for an uploaded file within a project
type File struct {
	Model
	UUID        string `json:"uuid" gorm:"type:text;uniqueIndex"`
	UserID      int    `json:"user_id" gorm:"index"`
	ProjectUUID string `json:"project_uuid" gorm:"type:text;index"`
	Name        string `json:"name"`
	Folder      string `json:"folder"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	StorageKey  string `json:"-"`
	URL         string `json:"url"`
}
