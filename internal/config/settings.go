package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/domestika-downloader/internal/browser"
	"github.com/handiism/domestika-downloader/internal/domestika"
	"github.com/handiism/domestika-downloader/internal/download"
	"github.com/handiism/domestika-downloader/internal/traverse"
)

// Settings holds all configuration options.
type Settings struct {
	// Entry configuration
	CatalogueURL string `json:"catalogue_url"`
	SubtitleLang string `json:"subtitle_lang"`
	OSVariant    string `json:"os_variant"` // mac, win
	Debug        bool   `json:"debug"`

	// Session
	CookiesPath string `json:"cookies_path"`

	// Output
	OutputRoot string `json:"output_root"`

	// Scheduling
	Concurrency            string `json:"concurrency"` // sequential, parallel
	MaxConcurrentCourses   int    `json:"max_concurrent_courses"`
	MaxConcurrentDownloads int    `json:"max_concurrent_downloads"`

	// Browser
	Headless         bool   `json:"headless"`
	ChromePath       string `json:"chrome_path"`
	PropsWaitSeconds int    `json:"props_wait_seconds"`
	UserAgent        string `json:"user_agent"` // empty uses browser.DefaultUserAgent

	// Extraction
	SkipFinalProject bool `json:"skip_final_project"`

	// External tools
	YtDlpPath      string `json:"ytdlp_path"`
	NM3U8DLPath    string `json:"n_m3u8dl_path"`
	WinVideoSelect string `json:"win_video_select"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		CatalogueURL: "",
		SubtitleLang: "it",
		OSVariant:    string(download.OSMac),
		Debug:        false,

		CookiesPath: "cookies.json",
		OutputRoot:  "domestika_courses",

		Concurrency:            traverse.Parallel.String(),
		MaxConcurrentCourses:   3,
		MaxConcurrentDownloads: 4,

		Headless:         true,
		PropsWaitSeconds: 15,

		SkipFinalProject: true,

		YtDlpPath:      "yt-dlp",
		NM3U8DLPath:    "N_m3u8DL-RE",
		WinVideoSelect: "for=best",
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings needed to start a run.
func (s *Settings) Validate() error {
	var errs []error
	if s.CatalogueURL == "" {
		errs = append(errs, errors.New("catalogue_url is required"))
	}
	if _, err := download.ParseOSVariant(s.OSVariant); err != nil {
		errs = append(errs, err)
	}
	if _, err := traverse.ParseStrategy(s.Concurrency); err != nil {
		errs = append(errs, err)
	}
	if s.MaxConcurrentCourses < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_courses must be at least 1, got %d", s.MaxConcurrentCourses))
	}
	if s.MaxConcurrentDownloads < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_downloads must be at least 1, got %d", s.MaxConcurrentDownloads))
	}
	return errors.Join(errs...)
}

// ToTraverseConfig converts settings to traverse.Config.
// Call Validate first; an unknown strategy falls back to Parallel.
func (s *Settings) ToTraverseConfig() traverse.Config {
	strategy, err := traverse.ParseStrategy(s.Concurrency)
	if err != nil {
		strategy = traverse.Parallel
	}
	return traverse.Config{
		CatalogueURL:         s.CatalogueURL,
		Strategy:             strategy,
		MaxConcurrentCourses: s.MaxConcurrentCourses,
	}
}

// ToDispatchConfig converts settings to download.Config.
func (s *Settings) ToDispatchConfig() download.Config {
	osVariant, err := download.ParseOSVariant(s.OSVariant)
	if err != nil {
		osVariant = download.OSMac
	}
	return download.Config{
		Root:                   s.OutputRoot,
		SubtitleLang:           s.SubtitleLang,
		OS:                     osVariant,
		Debug:                  s.Debug,
		YtDlpPath:              s.YtDlpPath,
		NM3U8DLPath:            s.NM3U8DLPath,
		WinVideoSelect:         s.WinVideoSelect,
		MaxConcurrentDownloads: s.MaxConcurrentDownloads,
	}
}

// ToBrowserOptions converts settings to browser.Options.
func (s *Settings) ToBrowserOptions() browser.Options {
	opts := browser.DefaultOptions()
	opts.Headless = s.Headless
	opts.ExecPath = s.ChromePath
	if s.UserAgent != "" {
		opts.UserAgent = s.UserAgent
	}
	if s.PropsWaitSeconds > 0 {
		opts.PropsWait = time.Duration(s.PropsWaitSeconds) * time.Second
	}
	return opts
}

// ToExtractorOptions converts settings to domestika.Options.
func (s *Settings) ToExtractorOptions() domestika.Options {
	opts := domestika.DefaultOptions()
	opts.SkipFinalProject = s.SkipFinalProject
	return opts
}
