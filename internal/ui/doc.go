// Package ui provides semantic text formatting for CLI and shell output.
//
// Formatters render with color when the terminal supports it. When NO_COLOR
// is set or the terminal does not support colors, text decorations are used
// instead:
//
//	ui.Code.Sprint("ordo edit notes.gpg") // `ordo edit notes.gpg`
//	ui.Highlight.Sprint("alice@example")  // 'alice@example'
//	ui.Muted.Sprint("3")                  // (3)
//	ui.Mode.Sprint("transparent")         // [transparent]
//
// Path, Success, Error, Warning and Info carry no decoration without color.
package ui
