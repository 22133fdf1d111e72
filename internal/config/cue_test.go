// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"cuelang.org/go/cue/cuecontext"
)

func TestFormatCUEError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()
		if err := formatCUEError(nil, "config.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with file path", func(t *testing.T) {
		t.Parallel()
		original := errors.New("some error")
		err := formatCUEError(original, "config.cue")
		if !errors.Is(err, original) {
			t.Errorf("expected wrapped original error, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "config.cue: ") {
			t.Errorf("error should start with file path, got: %v", err)
		}
	})

	t.Run("file errors keep their identity", func(t *testing.T) {
		t.Parallel()
		err := formatCUEError(fmt.Errorf("read config.cue: %w", fs.ErrPermission), "config.cue")
		if !errors.Is(err, fs.ErrPermission) {
			t.Errorf("errors.Is(err, fs.ErrPermission) = false for %v", err)
		}
		if want := "config.cue: read config.cue: permission denied"; err.Error() != want {
			t.Errorf("error = %q, want %q", err, want)
		}
	})

	t.Run("CUE error carries field path", func(t *testing.T) {
		t.Parallel()
		v := cuecontext.New().CompileString(`ui: verbose: bool & "yes"`)
		err := formatCUEError(v.Validate(), "config.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "config.cue: ui.verbose") {
			t.Errorf("error should contain file and field path, got: %v", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"serializer"}, "serializer"},
		{[]string{"ui", "verbose"}, "ui.verbose"},
		{[]string{"items", "0", "values", "1"}, "items[0].values[1]"},
		{[]string{"0"}, "0"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := checkFileSize(make([]byte, 100), 100, "config.cue"); err != nil {
		t.Errorf("data at exact limit: expected nil, got %v", err)
	}
	err := checkFileSize(make([]byte, 101), 100, "config.cue")
	if err == nil {
		t.Fatal("expected error above limit")
	}
	for _, want := range []string{"config.cue", "101", "100"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should contain %q, got: %v", want, err)
		}
	}
}
