// Package stats logs periodic runtime statistics on a cron schedule.
//
// A Reporter pulls connection and load figures from its Source (the
// server core) and emits one structured log line per scheduled run.
package stats
