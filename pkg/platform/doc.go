// SPDX-License-Identifier: MPL-2.0

// Package platform classifies host operating systems into the two launch
// families a worker command can target.
//
// The classification is a pure function of an OS identifier string so that
// callers can inject a simulated platform instead of reading process-wide
// state. Only Host consults runtime.GOOS.
package platform
