// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
)

// writeJSON writes v as indented JSON without HTML escaping, so option
// payloads print exactly as the worker receives them.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// writeLines writes one token per line.
func writeLines(w io.Writer, tokens []string) error {
	for _, tok := range tokens {
		if _, err := fmt.Fprintln(w, tok); err != nil {
			return err
		}
	}
	return nil
}
