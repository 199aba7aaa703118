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

package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/app"
	"github.com/researchos/researchos/pkg/server/context"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/operations"
	"github.com/researchos/researchos/pkg/server/presenters"
)

// NewProjects creates a new Projects controller
func NewProjects(app *app.App) *Projects {
	return &Projects{
		app: app,
	}
}

// Projects is a project controller
type Projects struct {
	app *app.App
}

// findProject resolves the projectUUID path variable for the signed in user.
// It writes the error response and returns false on failure.
func findProject(w http.ResponseWriter, r *http.Request, a *app.App) (database.User, database.Project, bool) {
	user := context.User(r.Context())
	if user == nil {
		handleJSONError(w, app.ErrLoginRequired, "no authenticated user found")
		return database.User{}, database.Project{}, false
	}

	uuid := mux.Vars(r)["projectUUID"]
	project, ok, err := operations.GetProject(a.DB, uuid, user)
	if err != nil {
		handleJSONError(w, err, "getting project")
		return database.User{}, database.Project{}, false
	}
	if !ok {
		handleJSONError(w, app.ErrProjectNotFound, "project not found")
		return database.User{}, database.Project{}, false
	}

	return *user, project, true
}

type createProjectPayload struct {
	Name        string `schema:"name" json:"name"`
	Description string `schema:"description" json:"description"`
}

// ProjectResponse wraps a single project
type ProjectResponse struct {
	Project presenters.Project `json:"project"`
}

// Create creates a project
func (p *Projects) Create(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		handleJSONError(w, app.ErrLoginRequired, "no authenticated user found")
		return
	}

	var params createProjectPayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	project, err := p.app.CreateProject(*user, params.Name, params.Description)
	if err != nil {
		handleJSONError(w, err, "creating project")
		return
	}

	respondJSON(w, http.StatusCreated, ProjectResponse{
		Project: presenters.PresentProject(project),
	})
}

// ProjectsResponse wraps a list of projects
type ProjectsResponse struct {
	Projects []presenters.Project `json:"projects"`
}

// Index lists the projects of the user
func (p *Projects) Index(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		handleJSONError(w, app.ErrLoginRequired, "no authenticated user found")
		return
	}

	projects, err := p.app.ListProjects(*user)
	if err != nil {
		handleJSONError(w, err, "listing projects")
		return
	}

	respondJSON(w, http.StatusOK, ProjectsResponse{
		Projects: presenters.PresentProjects(projects),
	})
}

// Show returns a single project
func (p *Projects) Show(w http.ResponseWriter, r *http.Request) {
	_, project, ok := findProject(w, r, p.app)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, ProjectResponse{
		Project: presenters.PresentProject(project),
	})
}

type updateProjectPayload struct {
	Name        *string `schema:"name" json:"name"`
	Description *string `schema:"description" json:"description"`
}

// Update changes the name or the description of a project
func (p *Projects) Update(w http.ResponseWriter, r *http.Request) {
	_, project, ok := findProject(w, r, p.app)
	if !ok {
		return
	}

	var params updateProjectPayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	project, err := p.app.UpdateProject(project, app.UpdateProjectParams{
		Name:        params.Name,
		Description: params.Description,
	})
	if err != nil {
		handleJSONError(w, err, "updating project")
		return
	}

	respondJSON(w, http.StatusOK, ProjectResponse{
		Project: presenters.PresentProject(project),
	})
}

// Delete removes a project with its notes and files
func (p *Projects) Delete(w http.ResponseWriter, r *http.Request) {
	_, project, ok := findProject(w, r, p.app)
	if !ok {
		return
	}

	if err := p.app.DeleteProject(r.Context(), project); err != nil {
		handleJSONError(w, errors.Wrap(err, "deleting project"), "deleting project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
