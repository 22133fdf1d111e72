// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// maxConfigFileSize bounds the config file read into memory.
const maxConfigFileSize = 1 << 20

func checkFileSize(data []byte, maxSize int64, filename string) error {
	if size := int64(len(data)); size > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, size, maxSize)
	}
	return nil
}

// formatCUEError rewrites a CUE error as "<file>: <field>: <message>", one
// line per underlying error:
//
//	config.cue: serializer: 2 errors in empty disjunction
//	config.cue: ui.verbose: conflicting values "yes" and bool
func formatCUEError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	// Plain errors keep their chain; cueerrors.Errors would flatten them.
	var cueErr cueerrors.Error
	if !errors.As(err, &cueErr) {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	list := cueerrors.Errors(err)
	lines := make([]string, 0, len(list))
	for _, e := range list {
		lines = append(lines, describeCUEError(e))
	}
	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// describeCUEError prefixes the message with the field path unless CUE
// already did.
func describeCUEError(e cueerrors.Error) string {
	field := formatPath(cueerrors.Path(e))
	msg := e.Error()
	if field == "" {
		return msg
	}
	if rest, ok := strings.CutPrefix(msg, field); ok {
		msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
	return field + ": " + msg
}

// formatPath joins a CUE selector path with dots, rendering numeric
// selectors after the first as list indices: ["ui", "0", "x"] -> "ui[0].x".
func formatPath(path []string) string {
	var sb strings.Builder
	for i, sel := range path {
		switch {
		case i == 0:
			sb.WriteString(sel)
		case isIndex(sel):
			sb.WriteString("[" + sel + "]")
		default:
			sb.WriteString("." + sel)
		}
	}
	return sb.String()
}

func isIndex(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && s[0] != '+'
}
