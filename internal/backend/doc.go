// Package backend translates schedules into native OS scheduling entries.
//
// Two implementations exist:
//   - Crontab: the user's crontab, one tagged line per schedule
//   - Launchd: one LaunchAgent plist per schedule (macOS)
//
// Both read the native state, keep everything they do not own untouched, and
// rewrite it wholesale. Installing a name that already exists replaces it.
package backend
