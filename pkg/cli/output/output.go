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

// Package output provides functions to print informations on the terminal
// in a consistent manner
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/researchos/researchos/pkg/cli/client"
	"github.com/researchos/researchos/pkg/cli/log"
	"github.com/researchos/researchos/pkg/notebook"
)

const timeFormat = "Jan 2, 2006 3:04pm (MST)"

// getNewlineIdx returns the index of newline character in a string
func getNewlineIdx(str string) int {
	// Check for \r\n first
	if idx := strings.Index(str, "\r\n"); idx != -1 {
		return idx
	}

	return strings.Index(str, "\n")
}

// Excerpt returns the first line of the given text and a boolean indicating
// if the text has been cut
func Excerpt(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	newlineIdx := getNewlineIdx(trimmed)

	if newlineIdx > -1 {
		return strings.TrimSpace(trimmed[0:newlineIdx]), true
	}

	return trimmed, false
}

// ProjectLine prints a project on a single line
func ProjectLine(w io.Writer, p client.Project) {
	fmt.Fprintf(w, "%s %s\n", p.Name, log.ColorGray.Sprintf("(%s)", p.UUID))
}

// NoteLine prints a note on a single line
func NoteLine(w io.Writer, n client.Note) {
	title := n.Title
	if title == "" {
		title = "Untitled"
	}

	fmt.Fprintf(w, "%s %s %s\n", log.ColorYellow.Sprintf("(%d)", n.Position), title, log.ColorGray.Sprintf("(%s)", n.UUID))
}

// NoteInfo prints a note information
func NoteInfo(w io.Writer, n client.Note) {
	fmt.Fprintf(w, "title: %s\n", n.Title)
	fmt.Fprintf(w, "note uuid: %s\n", n.UUID)
	fmt.Fprintf(w, "created at: %s\n", n.CreatedAt.Format(timeFormat))
	fmt.Fprintf(w, "updated at: %s\n", n.UpdatedAt.Format(timeFormat))
}

// BlockLine prints a block at its 1-based position with the first line of
// its text
func BlockLine(w io.Writer, idx int, b notebook.Block, text string) {
	excerpt, cut := Excerpt(text)
	if cut {
		excerpt += log.ColorGray.Sprint(" [...]")
	}

	fmt.Fprintf(w, "%s %s\n", log.ColorYellow.Sprintf("(%d)", idx), b.Header)
	if excerpt != "" {
		fmt.Fprintf(w, "    %s\n", excerpt)
	}
}

// BlockContent prints a block with its full text
func BlockContent(w io.Writer, b notebook.Block, text string) {
	fmt.Fprintf(w, "%s\n", log.ColorBlue.Sprint(b.Header))
	fmt.Fprintf(w, "%s\n", text)
}
