// Package cli is responsible for parsing command-line arguments and the
// STAGEHAND_* environment, validating user input, and handling process-level
// concerns like exit codes. It translates those inputs into the
// application's internal configuration.
package cli
