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

// Package jobs runs the periodic maintenance of the server
package jobs

import (
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/app"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/log"
	"github.com/robfig/cron"
)

const (
	// SessionPurgeSpec is the schedule of the expired session purge
	SessionPurgeSpec = "@hourly"
	// CheckpointSpec is the schedule of the sqlite WAL checkpoint
	CheckpointSpec = "@every 5m"
)

var (
	// ErrEmptyApp is an error for a missing app
	ErrEmptyApp = errors.New("No app was provided")
	// ErrEmptyDB is an error for missing database connection in the app
	ErrEmptyDB = errors.New("No database connection was provided")
)

// Runner schedules and runs the jobs
type Runner struct {
	Cron *cron.Cron
	App  *app.App
}

// NewRunner returns a new runner
func NewRunner(a *app.App) (Runner, error) {
	if a == nil {
		return Runner{}, ErrEmptyApp
	}
	if a.DB == nil {
		return Runner{}, ErrEmptyDB
	}

	return Runner{
		Cron: cron.New(),
		App:  a,
	}, nil
}

// PurgeSessions deletes the expired sessions
func (r *Runner) PurgeSessions() {
	n, err := r.App.PurgeExpiredSessions()
	if err != nil {
		log.ErrorWrap(err, "purging expired sessions")
		return
	}

	log.WithFields(log.Fields{
		"count": n,
	}).Info("Purged expired sessions.")
}

// Checkpoint truncates the sqlite write-ahead log
func (r *Runner) Checkpoint() {
	if err := database.Checkpoint(r.App.DB); err != nil {
		log.ErrorWrap(err, "checkpointing database")
	}
}

func (r *Runner) schedule() error {
	if err := r.Cron.AddFunc(SessionPurgeSpec, r.PurgeSessions); err != nil {
		return errors.Wrap(err, "scheduling session purge")
	}
	if err := r.Cron.AddFunc(CheckpointSpec, r.Checkpoint); err != nil {
		return errors.Wrap(err, "scheduling checkpoint")
	}

	return nil
}

// Do schedules the jobs and starts the cron in the background
func (r *Runner) Do() error {
	if err := r.schedule(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"jobs": len(r.Cron.Entries()),
	}).Info("Started background jobs.")
	r.Cron.Start()

	return nil
}

// Stop stops the cron. Running jobs are not interrupted.
func (r *Runner) Stop() {
	r.Cron.Stop()
}

// Run starts the jobs for the app
func Run(a *app.App) (*Runner, error) {
	r, err := NewRunner(a)
	if err != nil {
		return nil, errors.Wrap(err, "getting a job runner")
	}
	if err := r.Do(); err != nil {
		return nil, errors.Wrap(err, "starting jobs")
	}

	return &r, nil
}
