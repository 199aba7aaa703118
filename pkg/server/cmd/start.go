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
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/buildinfo"
	"github.com/researchos/researchos/pkg/server/config"
	"github.com/researchos/researchos/pkg/server/controllers"
	"github.com/researchos/researchos/pkg/server/jobs"
	"github.com/researchos/researchos/pkg/server/log"
)

const shutdownTimeout = 10 * time.Second

func startCmd(args []string) {
	fs := setupFlagSet("start", "researchos-server start")

	appEnv := fs.String("appEnv", "", "Application environment (env: APP_ENV, default: PRODUCTION)")
	port := fs.String("port", "", "Server port (env: PORT, default: 3001)")
	baseURL := fs.String("baseUrl", "", "Full URL to server without trailing slash (env: BASE_URL, default: http://localhost:3001)")
	db := addDBFlags(fs)
	disableRegistration := fs.Bool("disableRegistration", false, "Disable user registration (env: DISABLE_REGISTRATION, default: false)")
	logLevel := fs.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")

	fs.Parse(args)

	cfg, err := config.New(config.Params{
		AppEnv:              *appEnv,
		Port:                *port,
		BaseURL:             *baseURL,
		DBDriver:            *db.driver,
		DBPath:              *db.path,
		ConfigPath:          *db.config,
		DisableRegistration: *disableRegistration,
		LogLevel:            *logLevel,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg); err != nil {
		log.ErrorWrap(err, "server failed")
		os.Exit(1)
	}
}

// serve runs the server until ctx is done
func serve(ctx context.Context, cfg config.Config) error {
	app, err := initApp(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "initializing app")
	}
	defer closeDB(app.DB)

	runner, err := jobs.Run(&app)
	if err != nil {
		return errors.Wrap(err, "starting jobs")
	}
	defer runner.Stop()

	ctl := controllers.New(&app)
	rc := controllers.RouteConfig{
		WebRoutes:   controllers.NewWebRoutes(&app, ctl),
		APIRoutes:   controllers.NewAPIRoutes(&app, ctl),
		Controllers: ctl,
	}

	r, err := controllers.NewRouter(&app, rc)
	if err != nil {
		return errors.Wrap(err, "initializing router")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.WithFields(log.Fields{
		"version": buildinfo.Version,
		"port":    cfg.Port,
		"db":      cfg.DBDriver,
		"blob":    cfg.BlobBackend,
	}).Info("ResearchOS server starting")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down")
	}
	app.Tasks.Wait()

	return nil
}
