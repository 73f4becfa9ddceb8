// Package config provides configuration management for domestika-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Validation of enumerated options
//   - Conversion to the per-component configs of traverse, browser,
//     domestika and download
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ./domestika_courses/{course}/{section}/{unit}
//	// Courses traversed in parallel, 3 at a time
//	// yt-dlp with en + it subtitles
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.CatalogueURL = "https://www.domestika.org/en/me/courses_lists/1-list"
//	err := settings.Save("/path/to/config.json")
package config
