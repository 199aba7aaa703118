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
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/researchos/researchos/pkg/assert"
	"github.com/researchos/researchos/pkg/server/database/migrations"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// unsortedFS wraps fstest.MapFS to return entries in reverse order
type unsortedFS struct {
	fstest.MapFS
}

func (u unsortedFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := u.MapFS.ReadDir(name)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func openMemory(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	var count int64
	if err := db.Table(table).Count(&count).Error; err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}

	return count
}

func TestMigrate_idempotency(t *testing.T) {
	db := openMemory(t)
	if err := db.Exec("CREATE TABLE counter (value INTEGER)").Error; err != nil {
		t.Fatal(err)
	}

	fsys := fstest.MapFS{
		"001-insert-data.sql": &fstest.MapFile{Data: []byte("INSERT INTO counter (value) VALUES (100);")},
	}

	for i := 0; i < 2; i++ {
		if err := migrate(db, fsys); err != nil {
			t.Fatalf("migration run %d failed: %v", i, err)
		}
	}

	assert.Equal(t, countRows(t, db, "counter"), int64(1), "migration ran more than once")
	assert.Equal(t, countRows(t, db, "schema_migrations"), int64(1), "version records mismatch")
}

func TestMigrate_ordering(t *testing.T) {
	db := openMemory(t)
	if err := db.Exec("CREATE TABLE log (value INTEGER)").Error; err != nil {
		t.Fatal(err)
	}

	fsys := unsortedFS{MapFS: fstest.MapFS{
		"010-tenth.sql":  &fstest.MapFile{Data: []byte("INSERT INTO log (value) VALUES (3);")},
		"001-first.sql":  &fstest.MapFile{Data: []byte("INSERT INTO log (value) VALUES (1);")},
		"002-second.sql": &fstest.MapFile{Data: []byte("INSERT INTO log (value) VALUES (2);")},
	}}

	if err := migrate(db, fsys); err != nil {
		t.Fatal(err)
	}

	var values []int
	if err := db.Raw("SELECT value FROM log ORDER BY rowid").Scan(&values).Error; err != nil {
		t.Fatal(err)
	}
	assert.DeepEqual(t, values, []int{1, 2, 3}, "migrations applied out of order")
}

func TestMigrate_multipleStatements(t *testing.T) {
	db := openMemory(t)

	fsys := fstest.MapFS{
		"001-create.sql": &fstest.MapFile{Data: []byte(`-- a table
CREATE TABLE items (value INTEGER);
INSERT INTO items (value) VALUES (1);
INSERT INTO items (value)
  VALUES (2);
`)},
	}

	if err := migrate(db, fsys); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, countRows(t, db, "items"), int64(2), "row count mismatch")
}

func TestMigrate_sqlErrorRollsBack(t *testing.T) {
	db := openMemory(t)

	fsys := fstest.MapFS{
		"001-bad.sql": &fstest.MapFile{Data: []byte("CREATE TABLE partial (value INTEGER);\nINSERT INTO missing VALUES (1);")},
	}

	if err := migrate(db, fsys); err == nil {
		t.Fatal("expected an error")
	}

	assert.Equal(t, countRows(t, db, "schema_migrations"), int64(0), "failed migration was recorded")
	assert.Equal(t, db.Migrator().HasTable("partial"), false, "failed migration was not rolled back")
}

func TestMigrate_emptyFile(t *testing.T) {
	db := openMemory(t)

	fsys := fstest.MapFS{
		"001-empty.sql": &fstest.MapFile{Data: []byte("-- nothing here\n\n")},
	}

	if err := migrate(db, fsys); err == nil {
		t.Fatal("expected an error for an empty migration")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	testCases := []struct {
		name    string
		version int
		wantErr bool
	}{
		{"001-init.sql", 1, false},
		{"042-add-index.sql", 42, false},
		{"1-init.sql", 0, true},
		{"001.sql", 0, true},
		{"001-.sql", 0, true},
		{"abc-init.sql", 0, true},
		{"001-init.txt", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := parseMigrationFilename(tc.name)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			assert.Equal(t, v, tc.version, "version mismatch")
		})
	}
}

func TestMigrate_duplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001-a.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
		"001-b.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
	}

	if _, err := getMigrationFiles(fsys); err == nil {
		t.Fatal("expected an error for a duplicate version")
	}
}

func TestMigrate_embedded(t *testing.T) {
	db := openMemory(t)
	InitSchema(db)

	if err := Migrate(db); err != nil {
		t.Fatal(err)
	}

	files, err := getMigrationFiles(migrations.Files)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, countRows(t, db, "schema_migrations"), int64(len(files)), "not all embedded migrations ran")
}
