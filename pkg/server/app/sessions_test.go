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

package app

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/assert"
	"github.com/researchos/researchos/pkg/server/database"
	"github.com/researchos/researchos/pkg/server/testutils"
)

func TestCreateSession(t *testing.T) {
	a, c, _ := newTestApp(t)
	user := testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "pass1234")

	s1, err := a.CreateSession(user.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating first session"))
	}
	s2, err := a.CreateSession(user.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating second session"))
	}

	assert.NotEqual(t, s1.Key, s2.Key, "session keys should be unique")
	assert.Equal(t, s1.LastUsedAt.Equal(c.Now()), true, "last used at mismatch")
	assert.Equal(t, s1.ExpiresAt.Equal(c.Now().Add(SessionTTL)), true, "expires at mismatch")
}

func TestDeleteSession(t *testing.T) {
	a, _, _ := newTestApp(t)
	user := testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "pass1234")
	s1 := testutils.SetupSession(a.DB, user)
	s2 := testutils.SetupSession(a.DB, user)

	if err := a.DeleteSession(s1.Key); err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	var sessions []database.Session
	testutils.MustExec(t, a.DB.Find(&sessions), "finding sessions")
	assert.Equal(t, len(sessions), 1, "session count mismatch")
	assert.Equal(t, sessions[0].Key, s2.Key, "remaining session mismatch")
}

func TestDeleteUserSessions(t *testing.T) {
	a, _, _ := newTestApp(t)
	alice := testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(a.DB, "Bob", "bob@example.com", "pass1234")
	testutils.SetupSession(a.DB, alice)
	testutils.SetupSession(a.DB, alice)
	testutils.SetupSession(a.DB, bob)

	if err := a.DeleteUserSessions(alice.ID); err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	var aliceCount, bobCount int64
	testutils.MustExec(t, a.DB.Model(&database.Session{}).Where("user_id = ?", alice.ID).Count(&aliceCount), "counting alice sessions")
	testutils.MustExec(t, a.DB.Model(&database.Session{}).Where("user_id = ?", bob.ID).Count(&bobCount), "counting bob sessions")
	assert.Equal(t, aliceCount, int64(0), "alice session count mismatch")
	assert.Equal(t, bobCount, int64(1), "bob session count mismatch")
}

func TestPurgeExpiredSessions(t *testing.T) {
	a, c, _ := newTestApp(t)
	user := testutils.SetupUserData(a.DB, "Alice", "alice@example.com", "pass1234")

	expired := database.Session{UserID: user.ID, Key: "expired", ExpiresAt: c.Now().Add(-time.Minute)}
	valid := database.Session{UserID: user.ID, Key: "valid", ExpiresAt: c.Now().Add(time.Hour)}
	testutils.MustExec(t, a.DB.Save(&expired), "preparing expired session")
	testutils.MustExec(t, a.DB.Save(&valid), "preparing valid session")

	n, err := a.PurgeExpiredSessions()
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}
	assert.Equal(t, n, int64(1), "purged count mismatch")

	var sessions []database.Session
	testutils.MustExec(t, a.DB.Find(&sessions), "finding sessions")
	assert.Equal(t, len(sessions), 1, "session count mismatch")
	assert.Equal(t, sessions[0].Key, "valid", "remaining session mismatch")
}
