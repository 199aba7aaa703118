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
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/database/migrations"
	"github.com/researchos/researchos/pkg/server/log"
	"gorm.io/gorm"
)

type migrationFile struct {
	filename string
	version  int
}

// parseMigrationFilename returns the version of a file named NNN-description.sql
func parseMigrationFilename(name string) (int, error) {
	if !strings.HasSuffix(name, ".sql") {
		return 0, errors.Errorf("invalid migration filename %s: must end with .sql", name)
	}

	parts := strings.SplitN(strings.TrimSuffix(name, ".sql"), "-", 2)
	if len(parts) != 2 || parts[1] == "" {
		return 0, errors.Errorf("invalid migration filename %s: must be NNN-description.sql", name)
	}
	if len(parts[0]) != 3 {
		return 0, errors.Errorf("invalid migration filename %s: version must be 3 digits", name)
	}

	v, err := strconv.Atoi(parts[0])
	if err != nil || v < 0 {
		return 0, errors.Errorf("invalid migration filename %s: version must be numeric", name)
	}

	return v, nil
}

// Migrate runs the migrations using the embedded migration files
func Migrate(db *gorm.DB) error {
	return migrate(db, migrations.Files)
}

// getMigrationFiles reads, validates, and sorts migration files
func getMigrationFiles(fsys fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "reading migration directory")
	}

	var ret []migrationFile
	seen := make(map[int]string)
	for _, e := range entries {
		name := e.Name()

		v, err := parseMigrationFilename(name)
		if err != nil {
			return nil, err
		}
		if existing, found := seen[v]; found {
			return nil, errors.Errorf("duplicate migration version %d: %s and %s", v, existing, name)
		}
		seen[v] = name

		ret = append(ret, migrationFile{filename: name, version: v})
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].version < ret[j].version
	})

	return ret, nil
}

// splitStatements splits a migration into statements terminated by a
// semicolon at the end of a line. Comment-only chunks are dropped.
func splitStatements(sql string) []string {
	var ret []string
	var cur strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(cur.String())
		cur.Reset()

		for _, line := range strings.Split(stmt, "\n") {
			l := strings.TrimSpace(line)
			if l != "" && !strings.HasPrefix(l, "--") {
				ret = append(ret, stmt)
				return
			}
		}
	}

	for _, line := range strings.Split(sql, "\n") {
		cur.WriteString(line)
		cur.WriteString("\n")

		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			flush()
		}
	}
	flush()

	return ret
}

// migrate runs migrations from the provided filesystem. Each migration is
// applied together with its version record in a single transaction.
func migrate(db *gorm.DB, fsys fs.FS) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return errors.Wrap(err, "initializing migration table")
	}

	var version int
	if err := db.Raw("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version).Error; err != nil {
		return errors.Wrap(err, "reading current version")
	}

	files, err := getMigrationFiles(fsys)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"version": version,
		"files":   len(files),
	}).Debug("Database schema version.")

	for _, m := range files {
		if m.version <= version {
			continue
		}

		content, err := fs.ReadFile(fsys, m.filename)
		if err != nil {
			return errors.Wrapf(err, "reading migration file %s", m.filename)
		}

		stmts := splitStatements(string(content))
		if len(stmts) == 0 {
			return errors.Errorf("migration file %s is empty", m.filename)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			for _, stmt := range stmts {
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("migration %s failed: %w", m.filename, err)
				}
			}

			if err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version).Error; err != nil {
				return errors.Wrapf(err, "recording migration %s", m.filename)
			}

			return nil
		})
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"file": m.filename,
		}).Info("Migrate success.")
	}

	return nil
}
