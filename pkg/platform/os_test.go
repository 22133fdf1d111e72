// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"runtime"
	"testing"
)

func TestFamilyOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected Family
	}{
		{"GOOS windows", "windows", FamilyWindows},
		{"JVM style name", "Windows 10", FamilyWindows},
		{"upper case", "WINDOWS SERVER 2019", FamilyWindows},
		{"linux", "linux", FamilyPOSIX},
		{"darwin", "darwin", FamilyPOSIX},
		{"freebsd", "freebsd", FamilyPOSIX},
		{"empty string", "", FamilyPOSIX},
		{"garbage", "???", FamilyPOSIX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FamilyOf(tt.input); got != tt.expected {
				t.Errorf("FamilyOf(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHost(t *testing.T) {
	t.Parallel()

	want := FamilyPOSIX
	if runtime.GOOS == Windows {
		want = FamilyWindows
	}
	if got := Host(); got != want {
		t.Errorf("Host() = %q, want %q", got, want)
	}
}

func TestParseFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Family
		wantErr bool
	}{
		{"", Host(), false},
		{"auto", Host(), false},
		{"AUTO", Host(), false},
		{"posix", FamilyPOSIX, false},
		{" windows ", FamilyWindows, false},
		{"solaris", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFamily(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFamily) {
					t.Fatalf("ParseFamily(%q) error = %v, want ErrInvalidFamily", tt.input, err)
				}
				var fe *InvalidFamilyError
				if !errors.As(err, &fe) || fe.Value != tt.input {
					t.Errorf("ParseFamily(%q) error = %#v, want InvalidFamilyError with value", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFamily(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFamily(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
