// Package logger provides leveled logging for ordo commands.
//
// Output is prefixed with a colored level tag. The logger never sees buffer
// content: callers log paths, sizes and modes only.
//
// # Verbosity Levels
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details and errors
//
// Without flags, only WarnfAlways output is shown; errors reach the user
// through the command's final message instead.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Saved %d bytes to %s", n, path)
//
// The root command builds the logger in PersistentPreRun and passes it to the
// controller and backends explicitly.
package logger
