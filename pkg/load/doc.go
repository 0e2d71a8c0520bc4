// Package load measures process load and answers the admission question.
//
// A Monitor samples scheduler delay and heap usage on a fixed interval in
// a background goroutine and caches the result. The admission path calls
// Check, which compares the cached Snapshot against the configured limits
// without ever blocking or measuring. The in-flight request counter is
// maintained by Acquire/Release pairs placed around request processing.
//
// The numeric overload formula is deliberately simple; the server core
// depends only on the Start/Stop/Check/Snapshot surface, so a different
// implementation can be swapped in without touching admission.
package load
