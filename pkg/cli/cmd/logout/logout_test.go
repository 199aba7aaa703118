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

package logout

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/researchos/researchos/pkg/cli/config"
	"github.com/researchos/researchos/pkg/cli/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, status int) (context.Ctx, *int) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/auth/signout", r.URL.Path)
		assert.Equal(t, "Bearer sess1", r.Header.Get("Authorization"))
		w.WriteHeader(status)
	}))
	t.Cleanup(ts.Close)

	ctx := context.InitTestCtx(t)
	ctx.APIEndpoint = ts.URL + "/api"
	require.NoError(t, config.Write(ctx, config.Config{APIEndpoint: ctx.APIEndpoint}))
	require.NoError(t, config.SaveSession(ctx, "jane@uni.edu", "sess1", 1700000000))
	ctx.SessionKey = "sess1"

	return ctx, &calls
}

func TestDo(t *testing.T) {
	ctx, calls := setup(t, http.StatusNoContent)

	require.NoError(t, Do(ctx))
	assert.Equal(t, 1, *calls)

	cf, err := config.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", cf.SessionKey)
}

func TestDo_expiredSession(t *testing.T) {
	ctx, _ := setup(t, http.StatusUnauthorized)

	require.NoError(t, Do(ctx))

	cf, err := config.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", cf.SessionKey)
}

func TestDo_serverError(t *testing.T) {
	ctx, _ := setup(t, http.StatusInternalServerError)

	assert.Error(t, Do(ctx))

	cf, err := config.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sess1", cf.SessionKey, "session is kept when the server fails")
}

func TestDo_notLoggedIn(t *testing.T) {
	ctx := context.InitTestCtx(t)

	assert.Equal(t, ErrNotLoggedIn, Do(ctx))
}
