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

// Package client provides interfaces for interacting with the ResearchOS
// server and the data structures for responses
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/context"
	"github.com/researchos/researchos/pkg/cli/log"
	"github.com/researchos/researchos/pkg/notebook"
	"golang.org/x/time/rate"
)

// ErrContentTypeMismatch is an error for a response that is not of the expected type
var ErrContentTypeMismatch = errors.New("content type mismatch")

// HTTPError represents an HTTP error response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsConflict returns true if the error is a 409 Conflict error
func (e *HTTPError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsUnauthorized returns true if the error is a 401 Unauthorized error
func (e *HTTPError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// errorBody is the envelope the server uses for error responses
type errorBody struct {
	Error string `json:"error"`
}

var contentTypeApplicationJSON = "application/json"
var contentTypeNone = ""

// requestOptions contains options for requests
type requestOptions struct {
	HTTPClient *http.Client
	// ExpectedContentType is the Content-Type that the client is expecting from the server
	ExpectedContentType *string
}

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 50
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 100
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Wait for rate limiter to allow the request
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	// Calculate interval from rate: 1 second / requests per second
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
	}
}

func getHTTPClient(ctx context.Ctx, options *requestOptions) *http.Client {
	if options != nil && options.HTTPClient != nil {
		return options.HTTPClient
	}

	if ctx.HTTPClient != nil {
		return ctx.HTTPClient
	}

	return &http.Client{}
}

func getExpectedContentType(options *requestOptions) string {
	if options != nil && options.ExpectedContentType != nil {
		return *options.ExpectedContentType
	}

	return contentTypeApplicationJSON
}

func getReq(ctx context.Ctx, path, method, body string) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s%s", ctx.APIEndpoint, path)
	req, err := http.NewRequest(method, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("CLI-Version", ctx.Version)
	if body != "" {
		req.Header.Set("Content-Type", contentTypeApplicationJSON)
	}

	if ctx.SessionKey != "" {
		credential := fmt.Sprintf("Bearer %s", ctx.SessionKey)
		req.Header.Set("Authorization", credential)
	}

	return req, nil
}

// checkRespErr checks if the given http response indicates an error. The
// returned HTTPError carries the message from the error envelope, or the raw
// body if the response is not an envelope.
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	msg := strings.TrimRight(string(body), "\n")

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		msg = eb.Error
	}

	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    msg,
	}
}

func checkContentType(res *http.Response, options *requestOptions) error {
	expected := getExpectedContentType(options)

	got := res.Header.Get("Content-Type")
	if got != expected {
		return errors.Wrapf(ErrContentTypeMismatch, "got: '%s' want: '%s'. Did you configure your endpoint correctly?", got, expected)
	}

	return nil
}

// doReq does a http request to the given path in the api endpoint
func doReq(ctx context.Ctx, method, path, body string, options *requestOptions) (*http.Response, error) {
	req, err := getReq(ctx, path, method, body)
	if err != nil {
		return nil, errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	hc := getHTTPClient(ctx, options)
	res, err := hc.Do(req)
	if err != nil {
		return res, errors.Wrap(err, "making http request")
	}

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err = checkRespErr(res); err != nil {
		return res, errors.Wrap(err, "server responded with an error")
	}

	if err = checkContentType(res, options); err != nil {
		return res, errors.Wrap(err, "unexpected Content-Type")
	}

	return res, nil
}

// doAuthorizedReq does a http request to the given path in the api endpoint as a user,
// with the appropriate headers. The given path should include the preceding slash.
func doAuthorizedReq(ctx context.Ctx, method, path, body string, options *requestOptions) (*http.Response, error) {
	if ctx.SessionKey == "" {
		return nil, errors.New("no session key found")
	}

	return doReq(ctx, method, path, body, options)
}


func decodeJSON(res *http.Response, dst interface{}) error {
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "decoding payload")
	}

	return nil
}

// Message returns the message the server gave for a failed request, or the
// error text when the failure did not come from the server
func Message(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}

	return err.Error()
}

// Session is a session issued by the server
type Session struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterPayload is a payload for /auth/register
type RegisterPayload struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Institution  string `json:"institution"`
	Department   string `json:"department,omitempty"`
	Role         string `json:"role"`
	ResearchArea string `json:"researchArea,omitempty"`
	Country      string `json:"country"`
	State        string `json:"state,omitempty"`
	City         string `json:"city,omitempty"`
	OrcidID      string `json:"orcidId,omitempty"`
}

// RegisteredUser is the account created by a registration
type RegisteredUser struct {
	UUID  string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterResponse is a response from /auth/register
type RegisterResponse struct {
	User              RegisteredUser `json:"user"`
	NeedsVerification bool           `json:"needsVerification"`
}

// Register creates an unverified account and has the server email a
// verification code
func Register(ctx context.Ctx, payload RegisterPayload) (RegisterResponse, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return RegisterResponse{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := doReq(ctx, "POST", "/auth/register", string(b), nil)
	if err != nil {
		return RegisterResponse{}, errors.Wrap(err, "making http request")
	}

	var resp RegisterResponse
	if err := decodeJSON(res, &resp); err != nil {
		return RegisterResponse{}, err
	}

	return resp, nil
}

type verifyEmailPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyEmailResponse is a response from /auth/verify-email
type VerifyEmailResponse struct {
	Success bool    `json:"success"`
	Session Session `json:"session"`
}

// VerifyEmail submits a verification code. On success the server signs the
// user in and returns the session.
func VerifyEmail(ctx context.Ctx, email, code string) (VerifyEmailResponse, error) {
	b, err := json.Marshal(verifyEmailPayload{Email: email, Code: code})
	if err != nil {
		return VerifyEmailResponse{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := doReq(ctx, "POST", "/auth/verify-email", string(b), nil)
	if err != nil {
		return VerifyEmailResponse{}, errors.Wrap(err, "making http request")
	}

	var resp VerifyEmailResponse
	if err := decodeJSON(res, &resp); err != nil {
		return VerifyEmailResponse{}, err
	}

	return resp, nil
}

type resendCodePayload struct {
	Email string `json:"email"`
}

// ResendCodeResponse is a response from /auth/resend-code
type ResendCodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ResendCode asks the server to issue a new verification code
func ResendCode(ctx context.Ctx, email string) (ResendCodeResponse, error) {
	b, err := json.Marshal(resendCodePayload{Email: email})
	if err != nil {
		return ResendCodeResponse{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := doReq(ctx, "POST", "/auth/resend-code", string(b), nil)
	if err != nil {
		return ResendCodeResponse{}, errors.Wrap(err, "making http request")
	}

	var resp ResendCodeResponse
	if err := decodeJSON(res, &resp); err != nil {
		return ResendCodeResponse{}, err
	}

	return resp, nil
}

// SigninPayload is a payload for /auth/signin
type SigninPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninResponse is a response from /auth/signin endpoint
type SigninResponse struct {
	Session Session `json:"session"`
}

// Signin requests a session token
func Signin(ctx context.Ctx, email, password string) (SigninResponse, error) {
	payload := SigninPayload{
		Email:    email,
		Password: password,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return SigninResponse{}, errors.Wrap(err, "marshaling payload")
	}
	res, err := doReq(ctx, "POST", "/auth/signin", string(b), nil)
	if err != nil {
		return SigninResponse{}, errors.Wrap(err, "making http request")
	}

	var resp SigninResponse
	if err := decodeJSON(res, &resp); err != nil {
		return SigninResponse{}, err
	}

	return resp, nil
}

// Signout deletes a user session on the server side
func Signout(ctx context.Ctx) error {
	// Shares the transport, and thus the rate limiter, of ctx.HTTPClient
	// but doesn't follow redirects
	var hc *http.Client
	if ctx.HTTPClient != nil {
		hc = &http.Client{
			Transport: ctx.HTTPClient.Transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	} else {
		log.Warnf("No HTTP client configured for signout - falling back\n")
		hc = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	opts := requestOptions{
		HTTPClient:          hc,
		ExpectedContentType: &contentTypeNone,
	}
	res, err := doAuthorizedReq(ctx, "POST", "/auth/signout", "", &opts)
	if err != nil {
		return errors.Wrap(err, "making http request")
	}
	res.Body.Close()

	return nil
}

// User is the profile of the signed in user
type User struct {
	UUID          string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Institution   string `json:"institution"`
	Role          string `json:"role"`
}

type meResponse struct {
	User User `json:"user"`
}

// GetMe returns the user the session belongs to
func GetMe(ctx context.Ctx) (User, error) {
	res, err := doAuthorizedReq(ctx, "GET", "/auth/me", "", nil)
	if err != nil {
		return User{}, errors.Wrap(err, "making http request")
	}

	var resp meResponse
	if err := decodeJSON(res, &resp); err != nil {
		return User{}, err
	}

	return resp.User, nil
}

// Project is a research project
type Project struct {
	UUID        string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type projectsResponse struct {
	Projects []Project `json:"projects"`
}

// GetProjects lists the projects of the signed in user
func GetProjects(ctx context.Ctx) ([]Project, error) {
	res, err := doAuthorizedReq(ctx, "GET", "/projects", "", nil)
	if err != nil {
		return nil, errors.Wrap(err, "making http request")
	}

	var resp projectsResponse
	if err := decodeJSON(res, &resp); err != nil {
		return nil, err
	}

	return resp.Projects, nil
}

type createProjectPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type projectResponse struct {
	Project Project `json:"project"`
}

// CreateProject creates a project
func CreateProject(ctx context.Ctx, name, description string) (Project, error) {
	b, err := json.Marshal(createProjectPayload{Name: name, Description: description})
	if err != nil {
		return Project{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := doAuthorizedReq(ctx, "POST", "/projects", string(b), nil)
	if err != nil {
		return Project{}, errors.Wrap(err, "making http request")
	}

	var resp projectResponse
	if err := decodeJSON(res, &resp); err != nil {
		return Project{}, err
	}

	return resp.Project, nil
}

// Note is a note in a project
type Note struct {
	UUID        string    `json:"id"`
	ProjectUUID string    `json:"projectId"`
	Title       string    `json:"title"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type notesResponse struct {
	Notes []Note `json:"notes"`
}

// GetNotes lists the notes of a project by position
func GetNotes(ctx context.Ctx, projectUUID string) ([]Note, error) {
	path := fmt.Sprintf("/projects/%s/notes", url.PathEscape(projectUUID))
	res, err := doAuthorizedReq(ctx, "GET", path, "", nil)
	if err != nil {
		return nil, errors.Wrap(err, "making http request")
	}

	var resp notesResponse
	if err := decodeJSON(res, &resp); err != nil {
		return nil, err
	}

	return resp.Notes, nil
}

type createNotePayload struct {
	Title string `json:"title"`
}

type noteResponse struct {
	Note Note `json:"note"`
}

// CreateNote adds a note at the end of a project
func CreateNote(ctx context.Ctx, projectUUID, title string) (Note, error) {
	b, err := json.Marshal(createNotePayload{Title: title})
	if err != nil {
		return Note{}, errors.Wrap(err, "marshaling payload")
	}

	path := fmt.Sprintf("/projects/%s/notes", url.PathEscape(projectUUID))
	res, err := doAuthorizedReq(ctx, "POST", path, string(b), nil)
	if err != nil {
		return Note{}, errors.Wrap(err, "making http request")
	}

	var resp noteResponse
	if err := decodeJSON(res, &resp); err != nil {
		return Note{}, err
	}

	return resp.Note, nil
}

type blocksBody struct {
	Blocks []notebook.Block `json:"blocks"`
}

func blocksPath(noteUUID string) string {
	return fmt.Sprintf("/notes/%s/blocks", url.PathEscape(noteUUID))
}

// GetBlocks returns the blocks of a note in order
func GetBlocks(ctx context.Ctx, noteUUID string) ([]notebook.Block, error) {
	res, err := doAuthorizedReq(ctx, "GET", blocksPath(noteUUID), "", nil)
	if err != nil {
		return nil, errors.Wrap(err, "making http request")
	}

	var resp blocksBody
	if err := decodeJSON(res, &resp); err != nil {
		return nil, err
	}

	return resp.Blocks, nil
}

// PutBlocks replaces the whole block list of a note
func PutBlocks(ctx context.Ctx, noteUUID string, blocks []notebook.Block) ([]notebook.Block, error) {
	if blocks == nil {
		blocks = []notebook.Block{}
	}

	b, err := json.Marshal(blocksBody{Blocks: blocks})
	if err != nil {
		return nil, errors.Wrap(err, "marshaling payload")
	}

	res, err := doAuthorizedReq(ctx, "PUT", blocksPath(noteUUID), string(b), nil)
	if err != nil {
		return nil, errors.Wrap(err, "making http request")
	}

	var resp blocksBody
	if err := decodeJSON(res, &resp); err != nil {
		return nil, err
	}

	return resp.Blocks, nil
}

// BlockStore persists notebook blocks through the API
type BlockStore struct {
	Ctx context.Ctx
}

// SaveBlocks implements notebook.Store
func (s BlockStore) SaveBlocks(noteID string, blocks []notebook.Block) error {
	_, err := PutBlocks(s.Ctx, noteID, blocks)
	return err
}
