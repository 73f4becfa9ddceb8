package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// VideoDescriptor describes one downloadable video and where it goes.
type VideoDescriptor struct {
	// PlaybackURL is the streaming source passed verbatim to the downloader.
	PlaybackURL string

	// Title is the sanitized video title.
	Title string

	// Section is the sanitized heading of the unit page the video came from.
	Section string

	// Index is the 0-based position of the video inside its unit.
	Index int
}

// OutputName returns the output base name "<index>_<title>".
func (v VideoDescriptor) OutputName() string {
	return fmt.Sprintf("%d_%s", v.Index, v.Title)
}

// Dir returns the output directory <root>/<course>/<section>/<unit>.
//
// courseTitle and unitTitle are sanitized again here so callers can pass
// raw titles; Sanitize is idempotent so already clean values are unchanged.
func (v VideoDescriptor) Dir(root, courseTitle, unitTitle string) string {
	return filepath.Join(root,
		pathElement(Sanitize(courseTitle)),
		pathElement(v.Section),
		pathElement(Sanitize(unitTitle)),
	)
}

// pathElement keeps a title from naming the current or parent directory.
// Empty titles are left to filepath.Join, which drops them.
func pathElement(name string) string {
	if name == "." || name == ".." {
		return "-"
	}
	return name
}

// invalidChars lists the characters replaced by Sanitize.
const invalidChars = `/\?%*:|"<>`

// Sanitize makes a title safe to use as a single path element.
//
// Every occurrence of / \ ? % * : | " < > is replaced with '-' and
// leading/trailing whitespace is trimmed. Periods are kept.
//
// Example:
//
//	Sanitize(" Part 1/2: Ink ") // Returns "Part 1-2- Ink"
func Sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidChars, r) {
			return '-'
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}
