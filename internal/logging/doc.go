// Package logging provides structured logging for the obasdk tools.
//
// # Creating a Logger
//
// Create a logger with configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "/var/log/obasdk.log",
//	})
//
// Or use defaults:
//
//	logger := logging.NewDefault() // Info level, text format, stderr
//
// For testing, use a no-op logger:
//
//	logger := logging.NewNop()
//
// # Structured Logging
//
// Add key-value pairs to log entries:
//
//	logger.Info("extended operation completed",
//	    "oid", "1.3.6.1.1.21.3",
//	    "result", "success (0)",
//	    "duration", elapsed,
//	)
//
// Output (JSON format):
//
//	{"level":"info","oid":"1.3.6.1.1.21.3","result":"success (0)","duration":12,"ts":"2026-02-18T10:30:00Z","msg":"extended operation completed"}
//
// # Request ID Tracking
//
//	connLogger := logger.WithRequestID(logging.GenerateRequestID())
//	connLogger.Info("connected") // Includes request_id field
//
// # Output Destinations
//
//	logging.Config{Output: "stdout"}           // Standard output
//	logging.Config{Output: "stderr"}           // Standard error
//	logging.Config{Output: "/var/log/oba.log"} // File path
package logging
