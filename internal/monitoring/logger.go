// Package monitoring holds the process-wide diagnostic logger used by the
// calibration pipeline. Per-image skips (no spots, no symmetric cluster, no
// matching diffraction order) are reported through Logf so runs can be audited
// without surfacing them as errors.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
