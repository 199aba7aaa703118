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

// Package testutils provides utilities used in tests
package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/helpers"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitMemoryDB creates an in-memory SQLite database with the schema initialized
func InitMemoryDB(t *testing.T) *gorm.DB {
	// a unique name per test keeps the shared cache from leaking between tests
	uuid, err := helpers.GenUUID()
	if err != nil {
		t.Fatalf("failed to generate UUID for test database: %v", err)
	}
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid)
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	database.InitSchema(db)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupUserData creates and returns a new verified user for testing purposes
func SetupUserData(db *gorm.DB, name, email, password string) database.User {
	uuid, err := helpers.GenUUID()
	if err != nil {
		panic(errors.Wrap(err, "Failed to generate UUID"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(errors.Wrap(err, "Failed to hash password"))
	}

	user := database.User{
		UUID:          uuid,
		Name:          name,
		Email:         email,
		Password:      database.ToNullString(string(hashedPassword)),
		EmailVerified: true,
	}

	if err := db.Save(&user).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare user"))
	}

	return user
}

// SetupUnverifiedUser creates a user with an outstanding verification code
func SetupUnverifiedUser(db *gorm.DB, name, email, code string, issuedAt time.Time) database.User {
	user := SetupUserData(db, name, email, "pass1234")

	expiry := issuedAt.Add(10 * time.Minute)
	if err := db.Model(&user).Updates(map[string]interface{}{
		"email_verified": false,
		"verify_code":    code,
		"verify_expiry":  expiry,
		"code_issued_at": issuedAt,
	}).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare unverified user"))
	}

	user.EmailVerified = false
	user.VerifyCode = database.ToNullString(code)
	user.VerifyExpiry = &expiry
	user.CodeIssuedAt = &issuedAt

	return user
}

// SetupProjectData creates and returns a project owned by the user
func SetupProjectData(db *gorm.DB, user database.User, name string) database.Project {
	uuid, err := helpers.GenUUID()
	if err != nil {
		panic(errors.Wrap(err, "Failed to generate UUID"))
	}

	project := database.Project{
		UUID:   uuid,
		UserID: user.ID,
		Name:   name,
	}
	if err := db.Save(&project).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare project"))
	}

	return project
}

// SetupNoteData creates and returns a note in the project
func SetupNoteData(db *gorm.DB, user database.User, project database.Project, title string) database.Note {
	uuid, err := helpers.GenUUID()
	if err != nil {
		panic(errors.Wrap(err, "Failed to generate UUID"))
	}

	note := database.Note{
		UUID:        uuid,
		UserID:      user.ID,
		ProjectUUID: project.UUID,
		Title:       title,
	}
	if err := db.Save(&note).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare note"))
	}

	return note
}

// SetupSession creates and returns a new user session
func SetupSession(db *gorm.DB, user database.User) database.Session {
	key, err := helpers.GenRandomKey(32)
	if err != nil {
		panic(errors.Wrap(err, "Failed to generate session key"))
	}

	session := database.Session{
		Key:       key,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour * 24),
	}
	if err := db.Save(&session).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare session"))
	}

	return session
}

// HTTPDo makes an HTTP request and returns a response
func HTTPDo(t *testing.T, req *http.Request) *http.Response {
	hc := http.Client{
		// Do not follow redirects.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	res, err := hc.Do(req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "performing http request"))
	}

	return res
}

// SetReqAuthHeader sets the authorization header in the given request for the given user with a specific DB
func SetReqAuthHeader(t *testing.T, db *gorm.DB, req *http.Request, user database.User) {
	session := SetupSession(db, user)

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))
}

// HTTPAuthDo makes an HTTP request with an appropriate authorization header for a user with a specific DB
func HTTPAuthDo(t *testing.T, db *gorm.DB, req *http.Request, user database.User) *http.Response {
	SetReqAuthHeader(t, db, req, user)

	return HTTPDo(t, req)
}

// MakeReq makes an HTTP request and returns a response
func MakeReq(endpoint string, method, path, data string) *http.Request {
	u := fmt.Sprintf("%s%s", endpoint, path)

	req, err := http.NewRequest(method, u, strings.NewReader(data))

	if err != nil {
		panic(errors.Wrap(err, "constructing http request"))
	}

	return req
}

// MakeFormReq makes an HTTP request and returns a response
func MakeFormReq(endpoint, method, path string, data url.Values) *http.Request {
	req := MakeReq(endpoint, method, path, data.Encode())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req
}

// MustExec fails the test if the given database query has error
func MustExec(t *testing.T, db *gorm.DB, message string) {
	if err := db.Error; err != nil {
		t.Fatalf("%s: %s", message, err.Error())
	}
}

// GetCookieByName returns a cookie with the given name
func GetCookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	var ret *http.Cookie

	for i := 0; i < len(cookies); i++ {
		if cookies[i].Name == name {
			ret = cookies[i]
			break
		}
	}

	return ret
}

// MustRespondJSON responds with the JSON-encoding of the given interface. If the encoding
// fails, the test fails. It is used by test servers.
func MustRespondJSON(t *testing.T, w http.ResponseWriter, i interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(i); err != nil {
		t.Fatal(message)
	}
}

// DecodeJSON decodes the response body into v
func DecodeJSON(t *testing.T, res *http.Response, v interface{}) {
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatal(errors.Wrap(err, "decoding response body"))
	}
}

// PayloadKind is the encoding of a request payload
type PayloadKind int

const (
	// PayloadForm is a url encoded form
	PayloadForm PayloadKind = iota
	// PayloadJSON is a JSON body
	PayloadJSON
)

type payloadTest func(t *testing.T, kind PayloadKind)

// RunForFormAndJSON runs the given test function with form and JSON payloads
func RunForFormAndJSON(t *testing.T, name string, runTest payloadTest) {
	t.Run(fmt.Sprintf("%s-form", name), func(t *testing.T) {
		runTest(t, PayloadForm)
	})

	t.Run(fmt.Sprintf("%s-json", name), func(t *testing.T) {
		runTest(t, PayloadJSON)
	})
}

// PayloadWrapper is a wrapper for a payload that can be converted to
// either URL form values or JSON
type PayloadWrapper struct {
	Data interface{}
}

// ToURLValues encodes the struct fields using their schema tags. Nil pointer
// fields are left out.
func (p PayloadWrapper) ToURLValues() url.Values {
	values := url.Values{}

	el := reflect.ValueOf(p.Data)
	if el.Kind() == reflect.Ptr {
		el = el.Elem()
	}
	typ := el.Type()
	for i := 0; i < el.NumField(); i++ {
		fi := typ.Field(i)
		name := fi.Tag.Get("schema")
		if name == "" {
			name = fi.Name
		}

		field := el.Field(i)
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				continue
			}
			field = field.Elem()
		}
		values.Set(name, fmt.Sprint(field.Interface()))
	}

	return values
}

// ToJSON encodes the payload as JSON
func (p PayloadWrapper) ToJSON(t *testing.T) string {
	b, err := json.Marshal(p.Data)
	if err != nil {
		t.Fatal(err)
	}

	return string(b)
}

// MakePayloadReq makes a request carrying the payload in the given encoding
func MakePayloadReq(t *testing.T, endpoint, method, path string, kind PayloadKind, payload interface{}) *http.Request {
	p := PayloadWrapper{Data: payload}

	if kind == PayloadForm {
		return MakeFormReq(endpoint, method, path, p.ToURLValues())
	}

	req := MakeReq(endpoint, method, path, p.ToJSON(t))
	req.Header.Set("Content-Type", "application/json")

	return req
}

// MustUUID generates a uuid and fails the test on error
func MustUUID(t *testing.T) string {
	uuid, err := helpers.GenUUID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "Failed to generate UUID"))
	}

	return uuid
}
