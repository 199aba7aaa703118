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
	"sync"

	"github.com/researchos/researchos/pkg/server/log"
)

// Tasks runs fire-and-forget work off the request path. Failures are logged.
type Tasks struct {
	wg sync.WaitGroup
}

// Go runs fn in a new goroutine
func (t *Tasks) Go(name string, fn func() error) {
	t.wg.Add(1)

	go func() {
		defer t.wg.Done()

		if err := fn(); err != nil {
			log.WithFields(log.Fields{
				"task": name,
			}).ErrorWrap(err, "running background task")
		}
	}()
}

// Wait blocks until every started task returns
func (t *Tasks) Wait() {
	t.wg.Wait()
}
