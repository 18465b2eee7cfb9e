// Package logger provides structured logging for feedscraper on top of zerolog.
//
// A global logger is configured once from config.LoggingConfig and shared by
// the CLI, the HTTP handler and the collection core:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("Collected profile", map[string]interface{}{
//	    "username": "alice",
//	    "posts":    10,
//	})
//
// Console output goes to stderr so command output on stdout stays clean.
// Tests use NewTestLogger to capture messages or NewNopLogger to discard them.
package logger
