// Package ioutils provides the file system helpers used by the dispatcher.
//
// This package contains functions for:
//   - Directory creation
//   - Writing files atomically
//   - Writing JSON documents (the debug log)
//
// # File Operations
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/downloads/Course/Section/Unit")
//
//	// Write data to file
//	err := ioutils.WriteFile(ctx, "/path/to/file.txt", []byte("content"))
//
//	// Write a value as indented JSON
//	err := ioutils.WriteJSON(ctx, "/downloads/Course/debug_log.json", entries)
package ioutils
