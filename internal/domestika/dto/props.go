// Package dto holds the JSON shapes embedded in Domestika pages.
package dto

import "github.com/handiism/domestika-downloader/internal/model"

// InitialProps is the subset of window.__INITIAL_PROPS__ used on unit pages.
type InitialProps struct {
	Videos []JSONVideoEntry `json:"videos"`
}

// JSONVideoEntry wraps a single video in the videos array.
type JSONVideoEntry struct {
	Video *JSONVideo `json:"video"`
}

// JSONVideo carries the playback source and title of a video.
type JSONVideo struct {
	PlaybackURL string `json:"playbackURL"`
	Title       string `json:"title"`
}

// ToDescriptors converts the videos array to descriptors.
//
// Entries without a video object or without a playback URL are skipped;
// indexes stay contiguous over the entries that remain.
func (p *InitialProps) ToDescriptors(section string) []model.VideoDescriptor {
	out := make([]model.VideoDescriptor, 0, len(p.Videos))
	for _, entry := range p.Videos {
		if entry.Video == nil || entry.Video.PlaybackURL == "" {
			continue
		}
		out = append(out, model.VideoDescriptor{
			PlaybackURL: entry.Video.PlaybackURL,
			Title:       model.Sanitize(entry.Video.Title),
			Section:     section,
			Index:       len(out),
		})
	}
	return out
}
