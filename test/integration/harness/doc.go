// Package harness runs the compiled chordd binary for integration tests.
//
// Each test environment isolates:
//   - XDG_CONFIG_HOME and XDG_STATE_HOME (config, journal and logs)
//   - TMPDIR (default binding table location)
//   - DISPLAY, cleared so no test grabs keys on a real X server
package harness
