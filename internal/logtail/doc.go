// Package logtail reads the end of the albumdeck log file and colours it
// for the about view.
//
// Read keeps a ring buffer of maxLines entries, so only the requested tail
// is held in memory regardless of file size. A missing file is not an
// error: the log may not have been written yet.
//
// Lines are expected in the charmbracelet/log text format with timestamps:
//
//	2026/10/17 09:14:02 INFO albumdeck: request finished status=200
//
// ColorizeLine styles the timestamp and level with lipgloss and leaves the
// message untouched. Lines in any other shape get the detail style.
package logtail
