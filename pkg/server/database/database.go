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
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrUnknownDriver is returned for a driver other than sqlite or postgres
var ErrUnknownDriver = errors.New("unknown database driver")

// InitSchema migrates database schema to reflect the latest model definition
func InitSchema(db *gorm.DB) {
	if err := db.AutoMigrate(
		&User{},
		&Session{},
		&Project{},
		&Note{},
		&NoteBlock{},
		&File{},
	); err != nil {
		panic(err)
	}
}

// getDBLogLevel maps the application log level to the gorm log level.
// SQL statements are only logged in debug mode.
func getDBLogLevel(level string) logger.LogLevel {
	switch level {
	case log.LevelDebug:
		return logger.Info
	case log.LevelWarn:
		return logger.Warn
	case log.LevelError:
		return logger.Error
	default:
		return logger.Silent
	}
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite, "":
		dir := filepath.Dir(dsn)
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, errors.Wrapf(err, "creating database directory at %s", dir)
			}
		}

		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "'%s'", driver)
	}
}

// Open initializes the database connection for the given driver. For sqlite
// the dsn is a file path; for postgres it is a connection string.
func Open(driver, dsn string) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(getDBLogLevel(log.GetLevel())),
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening database connection")
	}

	if driver != DriverPostgres {
		if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
			log.WithFields(log.Fields{"error": err}).Warn("enabling WAL journal mode")
		}
	}

	return db, nil
}

// MustOpen opens the database, initializes the schema and runs the migrations.
// It panics on failure.
func MustOpen(driver, dsn string) *gorm.DB {
	db, err := Open(driver, dsn)
	if err != nil {
		panic(err)
	}

	InitSchema(db)
	if err := Migrate(db); err != nil {
		panic(errors.Wrap(err, "running migrations"))
	}

	return db
}

// Checkpoint truncates the sqlite write-ahead log. It is a no-op for postgres.
func Checkpoint(db *gorm.DB) error {
	if db.Dialector.Name() != DriverSQLite {
		return nil
	}

	if err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
		return errors.Wrap(err, "checkpointing WAL")
	}

	return nil
}

// Ping checks that the database answers
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting sql database")
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "pinging database")
	}

	return nil
}
