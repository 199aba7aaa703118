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
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/researchos/researchos/pkg/assert"
	"github.com/researchos/researchos/pkg/server/log"
	"gorm.io/gorm/logger"
)

func TestGetDBLogLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected logger.LogLevel
	}{
		{log.LevelDebug, logger.Info},
		{log.LevelInfo, logger.Silent},
		{log.LevelWarn, logger.Warn},
		{log.LevelError, logger.Error},
		{"unknown", logger.Silent},
		{"", logger.Silent},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, getDBLogLevel(tc.level), tc.expected, "log level mismatch")
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "root@/db")
	assert.ErrorIs(t, err, ErrUnknownDriver, "error mismatch")
}

func TestMustOpenSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "server.db")

	db := MustOpen(DriverSQLite, path)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()

	assert.Equal(t, db.Migrator().HasTable(&NoteBlock{}), true, "note_blocks table missing")
	if err := Checkpoint(db); err != nil {
		t.Fatal(err)
	}
}

func TestEmailUniqueCaseInsensitive(t *testing.T) {
	db := MustOpen(DriverSQLite, filepath.Join(t.TempDir(), "server.db"))

	if err := db.Create(&User{UUID: "u1", Email: "jane@uni.edu"}).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&User{UUID: "u2", Email: "JANE@uni.edu"}).Error; err == nil {
		t.Fatal("expected a unique constraint violation")
	}
}

func TestHasPendingCode(t *testing.T) {
	expiry := time.Now()

	assert.Equal(t, User{}.HasPendingCode(), false, "empty user")
	assert.Equal(t, User{VerifyCode: ToNullString("123456")}.HasPendingCode(), false, "code without expiry")
	assert.Equal(t, User{VerifyCode: ToNullString("123456"), VerifyExpiry: &expiry}.HasPendingCode(), true, "code with expiry")
}

func TestPing(t *testing.T) {
	db := openMemory(t)

	if err := Ping(context.Background(), db); err != nil {
		t.Fatal(err)
	}
}
