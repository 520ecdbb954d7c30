// Package log provides the logging abstraction used by qosship components.
//
// Components depend on the Logger interface only. The zerolog adapter is
// what the CLI installs; NoopLogger is the default for library callers and
// tests.
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	logger.Info("sample", log.Int32("rssi_dbm", -58))
package log
