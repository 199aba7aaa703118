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

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/clock"
	"github.com/researchos/researchos/pkg/server/app"
	"github.com/researchos/researchos/pkg/server/blob"
	"github.com/researchos/researchos/pkg/server/config"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/llm"
	"github.com/researchos/researchos/pkg/server/log"
	"github.com/researchos/researchos/pkg/server/mailer"
	"gorm.io/gorm"
)

func initDB(cfg config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	database.InitSchema(db)
	if err := database.Migrate(db); err != nil {
		return nil, errors.Wrap(err, "running migrations")
	}

	return db, nil
}

func getEmailBackend(cfg config.Config) mailer.Backend {
	defaultBackend, err := mailer.NewDefaultBackend(cfg.SMTP)
	if err != nil {
		log.Debug("SMTP not configured, using StdoutBackend for emails")
		return mailer.NewStdoutBackend()
	}

	log.Debug("Email backend configured")
	return defaultBackend
}

func getBlobStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	if cfg.BlobBackend == config.BlobBackendS3 {
		return blob.NewS3Store(ctx, cfg.S3)
	}

	return blob.NewLocalStore(cfg.UploadDir, cfg.BaseURL+"/uploads")
}

// getCompleter returns nil when no API key is configured
func getCompleter(cfg config.Config) llm.Completer {
	c, err := llm.New(cfg.LLMURL, cfg.LLMKey, cfg.LLMModel)
	if err != nil {
		log.Debug("LLM not configured, the assistant is disabled")
		return nil
	}

	return c
}

func initApp(ctx context.Context, cfg config.Config) (app.App, error) {
	db, err := initDB(cfg)
	if err != nil {
		return app.App{}, errors.Wrap(err, "initializing database")
	}

	store, err := getBlobStore(ctx, cfg)
	if err != nil {
		return app.App{}, errors.Wrap(err, "initializing blob store")
	}

	return app.App{
		DB:                  db,
		Clock:               clock.New(),
		EmailBackend:        getEmailBackend(cfg),
		Blob:                store,
		LLM:                 getCompleter(cfg),
		Tasks:               &app.Tasks{},
		AppEnv:              cfg.AppEnv,
		BaseURL:             cfg.BaseURL,
		EmailFrom:           cfg.EmailFrom,
		DisableRegistration: cfg.DisableRegistration,
		Port:                cfg.Port,
		DBDriver:            cfg.DBDriver,
		DBPath:              cfg.DBPath,
		CSRFKey:             cfg.CSRFKey,
	}, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// printFlags prints flags with -- prefix for consistency with CLI
func printFlags(fs *flag.FlagSet) {
	fs.VisitAll(func(f *flag.Flag) {
		fmt.Printf("  --%s", f.Name)

		// Print type hint for non-boolean flags
		name, usage := flag.UnquoteUsage(f)
		if name != "" {
			fmt.Printf(" %s", name)
		}
		fmt.Println()

		if usage != "" {
			fmt.Printf("    \t%s", usage)
			if f.DefValue != "" && f.DefValue != "false" {
				fmt.Printf(" (default: %s)", f.DefValue)
			}
			fmt.Println()
		}
	})
}

// setupFlagSet creates a FlagSet with standard usage format
func setupFlagSet(name, usageCmd string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Printf(`Usage:
  %s [flags]

Flags:
`, usageCmd)
		printFlags(fs)
	}
	return fs
}

// requireString validates that a required string flag is not empty
func requireString(fs *flag.FlagSet, value, fieldName string) {
	if value == "" {
		fmt.Printf("Error: %s is required\n", fieldName)
		fs.Usage()
		os.Exit(1)
	}
}

// dbFlags are the flags shared by the commands that open the database
type dbFlags struct {
	driver *string
	path   *string
	config *string
}

func addDBFlags(fs *flag.FlagSet) dbFlags {
	return dbFlags{
		driver: fs.String("dbDriver", "", "Database driver: sqlite or postgres (env: DB_DRIVER, default: sqlite)"),
		path:   fs.String("dbPath", "", "Path to SQLite database file or postgres DSN (env: DB_PATH, default: $XDG_DATA_HOME/researchos/server.db)"),
		config: fs.String("config", "", "Path to a YAML config file (env: RESEARCHOS_CONFIG)"),
	}
}

// setupAppWithDB creates config, initializes app, and returns cleanup function
func setupAppWithDB(fs *flag.FlagSet, f dbFlags) (*app.App, func()) {
	cfg, err := config.New(config.Params{
		DBDriver:   *f.driver,
		DBPath:     *f.path,
		ConfigPath: *f.config,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	a, err := initApp(context.Background(), cfg)
	if err != nil {
		log.ErrorWrap(err, "initializing app")
		os.Exit(1)
	}

	cleanup := func() {
		a.Tasks.Wait()
		closeDB(a.DB)
	}

	return &a, cleanup
}
