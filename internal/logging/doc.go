// Package logging provides structured logging for the bridge.
//
// It wraps a zap logger with convenience functions for the patterns the
// bridge needs: connection events, assembled serial frames, and raw
// byte dumps with bounded hex/ascii rendering.
//
// Initialize at startup with a level from the --log-level flag or the
// SABRIDGE_LOG_LEVEL environment variable; when neither is set the
// logger is a silent nop so the TCP text surface stays clean:
//
//	if err := logging.Initialize(level); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// All functions are safe for concurrent use.
package logging
