// Package sentralog wraps the standard log package with level-tagged
// helpers, rather than reaching for a third-party structured logger — it
// just gives every package above it one place to prefix a level.
package sentralog

import "log"

func Debug(format string, args ...interface{}) { log.Printf("[DEBUG] "+format, args...) }
func Info(format string, args ...interface{})  { log.Printf("[INFO] "+format, args...) }
func Warn(format string, args ...interface{})  { log.Printf("[WARN] "+format, args...) }
func Error(format string, args ...interface{}) { log.Printf("[ERROR] "+format, args...) }

// Fatal logs with a [FATAL] tag and exits the process, for unrecoverable
// startup failures.
func Fatal(format string, args ...interface{}) { log.Fatalf("[FATAL] "+format, args...) }
