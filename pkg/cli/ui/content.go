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

package ui

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/researchos/researchos/pkg/cli/log"
	"github.com/researchos/researchos/pkg/cli/utils/diff"
)

// HTMLToText renders block content as plain text with one paragraph per
// line group
func HTMLToText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", errors.Wrap(err, "parsing content")
	}

	var paras []string
	doc.Find("p, h1, h2, h3, h4, h5, h6, li, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("li, blockquote").Length() > 0 {
			return
		}

		text := strings.TrimSpace(s.Text())
		if goquery.NodeName(s) == "li" {
			text = "- " + text
		}
		paras = append(paras, text)
	})

	if len(paras) == 0 {
		return strings.TrimSpace(doc.Text()), nil
	}

	return strings.TrimSpace(strings.Join(paras, "\n\n")), nil
}

// TextToHTML turns plain text into paragraphs. Paragraphs are separated by a
// blank line. Empty text gives a single empty paragraph.
func TextToHTML(text string) string {
	var b strings.Builder

	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		lines := strings.Split(para, "\n")
		for i, l := range lines {
			lines[i] = html.EscapeString(strings.TrimSpace(l))
		}

		fmt.Fprintf(&b, "<p>%s</p>", strings.Join(lines, "<br>"))
	}

	if b.Len() == 0 {
		return "<p></p>"
	}

	return b.String()
}

// PrintDiff writes a line-by-line diff between two texts
func PrintDiff(w io.Writer, before, after string) {
	for _, d := range diff.Do(before, after) {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}

			switch d.Type {
			case diff.DiffInsert:
				fmt.Fprint(w, log.ColorGreen.Sprintf("+ %s", line))
			case diff.DiffDelete:
				fmt.Fprint(w, log.ColorRed.Sprintf("- %s", line))
			default:
				fmt.Fprintf(w, "  %s", line)
			}
		}
	}
}
