package download

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/handiism/domestika-downloader/internal/model"
)

// OSVariant selects the downloader toolchain.
type OSVariant string

const (
	// OSMac uses yt-dlp with embedded subtitles.
	OSMac OSVariant = "mac"

	// OSWin uses N_m3u8DL-RE with a separate SRT subtitle pass.
	OSWin OSVariant = "win"
)

// ParseOSVariant converts a configuration value to an OSVariant.
func ParseOSVariant(s string) (OSVariant, error) {
	switch v := OSVariant(strings.ToLower(strings.TrimSpace(s))); v {
	case OSMac, OSWin:
		return v, nil
	case "":
		return OSMac, nil
	default:
		return "", fmt.Errorf("unknown os variant %q (want mac or win)", s)
	}
}

// Command is one external program invocation.
type Command struct {
	Name string
	Args []string
}

// String renders the command for logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if strings.ContainsAny(a, " \t\"") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Runner executes a command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecRunner runs commands with os/exec. Cancelling ctx kills the process.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, cmd Command) ([]byte, error) {
	return exec.CommandContext(ctx, cmd.Name, cmd.Args...).CombinedOutput()
}

// DownloadError reports a failed external download command.
type DownloadError struct {
	Command Command
	Output  string
	Err     error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Command.Name, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// BuildCommands returns the invocations that download v into dir.
func BuildCommands(cfg Config, v model.VideoDescriptor, dir string) []Command {
	name := v.OutputName()

	if cfg.OS == OSWin {
		return []Command{
			{
				Name: cfg.NM3U8DLPath,
				Args: []string{
					v.PlaybackURL,
					"--save-dir", dir,
					"--save-name", name,
					"--select-video", cfg.WinVideoSelect,
					"--select-audio", "for=best",
				},
			},
			{
				Name: cfg.NM3U8DLPath,
				Args: []string{
					v.PlaybackURL,
					"--save-dir", dir,
					"--save-name", name,
					"--sub-only",
					"--select-subtitle", fmt.Sprintf("lang=%s:for=all", subtitleLangs(cfg, "|")),
					"--sub-format", "SRT",
					"--auto-subtitle-fix",
				},
			},
		}
	}

	return []Command{
		{
			Name: cfg.YtDlpPath,
			Args: []string{
				"--output", name,
				"--paths", dir,
				"--sub-langs", subtitleLangs(cfg, ","),
				"--embed-subs",
				v.PlaybackURL,
			},
		},
	}
}

// subtitleLangs joins "en" and the configured language, skipping duplicates.
func subtitleLangs(cfg Config, sep string) string {
	lang := strings.TrimSpace(cfg.SubtitleLang)
	if lang == "" || lang == "en" {
		return "en"
	}
	return "en" + sep + lang
}
