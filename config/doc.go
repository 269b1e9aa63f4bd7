// Package config resolves tally's settings.
//
// # Precedence
//
// Highest to lowest:
//
//  1. CLI flags (-summary-report-on, -log-level, -notty)
//  2. Environment variables (TALLY_SUMMARY_REPORT_ON, TALLY_LOG_LEVEL, NO_COLOR)
//  3. YAML config file (.tally.yaml in the working directory, or -config)
//  4. Defaults
//
// # File format
//
//	summary_report_on: module-path
//	log_level: debug
//	notty: true
//	no_color: false
package config
