// Package ui styles terminal output with lipgloss.
//
// It renders status lines ([Success], [Failure], [Warning]), section headers, drive update progress and
// summaries, and the run history table. Colors degrade to plain text when output is not a terminal.
package ui
