// Package audit persists server lifecycle and admission events to a
// local SQLite database.
//
// Store owns the database and schema; Recorder adapts it to the
// server's event observer so starts, stops and load rejections leave a
// durable trail. Audit failures are logged, never propagated: the
// server keeps serving when the audit disk is unavailable.
package audit
