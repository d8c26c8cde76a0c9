// Package config loads the calendar-sync configuration.
//
// Values come from the environment, optionally seeded from a .env file.
// Defaults are declared on the section structs with `default` tags and every
// key is addressed as SECTION_KEY, e.g. DATABASE_DRIVER or SYNC_STALENESS_WINDOW.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and timeouts
//   - Database: driver (mysql, postgres, sqlite) and connection details
//   - Provider: directory provider kind and its Graph or Google credentials
//   - Sync: staleness window, batch threshold, throttle and job intervals
//   - Storage: MinIO archive for run reports
//   - Notify: AMQP exchange for run notifications
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
