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

package notebook

import (
	"sync"
)

// Selection tracks the block being edited across containers. A parent view
// owns it so that toolbar actions reach the right note.
type Selection struct {
	mu      sync.Mutex
	noteID  string
	blockID string
}

// Set makes the block active
func (s *Selection) Set(noteID, blockID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.noteID = noteID
	s.blockID = blockID
}

// Active returns the active note and block, or empty strings
func (s *Selection) Active() (noteID, blockID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.noteID, s.blockID
}

// Clear unsets the active block
func (s *Selection) Clear() {
	s.Set("", "")
}
