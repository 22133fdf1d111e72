// SPDX-License-Identifier: MPL-2.0

package issue

import "github.com/charmbracelet/glamour"

// render is swapped in tests.
var render = glamour.Render

// RenderMarkdown renders a Markdown report for the terminal with the given
// glamour style ("auto", "dark", "light", "notty" or a style file path).
// When rendering fails the raw Markdown is returned with the error.
func RenderMarkdown(md, style string) (string, error) {
	out, err := render(md, style)
	if err != nil {
		return md, err
	}
	return out, nil
}
