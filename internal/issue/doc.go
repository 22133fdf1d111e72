// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors for CLI output and Markdown
// rendering for longer reports.
//
// An ActionableError says which operation failed, on which resource, and
// what the user can do about it. Wrapped causes stay reachable through
// errors.Is and errors.As.
package issue
