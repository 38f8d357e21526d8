// Package utils provides shared helpers for ordo.
//
// # System Utilities
//
//   - GetUsername: returns the current system username (audit entries)
//   - ExpandHome: expands a leading ~ in configured paths
//
// # String Utilities
//
//   - FormatPaths: formats file paths for `ordo list`
//   - SplitLines / JoinLines: line views of a buffer for the shell
//
// # I/O Utilities
//
//   - ReadStdin: reads piped plaintext for `ordo create`
//
// # Terminal Utilities
//
//   - ReadPassphrase: hidden input
//   - ReadKey: a single raw keypress from a terminal
//   - OpenTTY, IsTerminal, IsTTYAvailable
package utils
