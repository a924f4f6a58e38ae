// Package ui renders progress and status lines for the pvetemplate CLI.
//
// Output is styled with lipgloss when stdout is a terminal and plain
// otherwise, so logs captured by cron or CI stay readable.
package ui
