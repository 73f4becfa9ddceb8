package download

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"sync/atomic"

	ioutils "github.com/handiism/domestika-downloader/internal/io"
	"github.com/handiism/domestika-downloader/internal/model"
	"github.com/handiism/domestika-downloader/internal/progress"
	"golang.org/x/sync/errgroup"
)

// DebugLogFileName is written inside each course directory in debug mode.
const DebugLogFileName = "debug_log.json"

// Config controls how videos are dispatched.
type Config struct {
	// Root is the output directory all courses are written under.
	Root string

	// SubtitleLang is requested in addition to "en".
	SubtitleLang string

	OS OSVariant

	// Debug enables command output in Verbose events and the debug log.
	Debug bool

	YtDlpPath   string
	NM3U8DLPath string

	// WinVideoSelect is the N_m3u8DL-RE --select-video option.
	WinVideoSelect string

	// MaxConcurrentDownloads bounds parallel videos within one course.
	// Values below 1 mean 1.
	MaxConcurrentDownloads int
}

// DefaultConfig returns the dispatcher defaults.
func DefaultConfig() Config {
	return Config{
		Root:                   "domestika_courses",
		SubtitleLang:           "it",
		OS:                     OSMac,
		YtDlpPath:              "yt-dlp",
		NM3U8DLPath:            "N_m3u8DL-RE",
		WinVideoSelect:         "for=best",
		MaxConcurrentDownloads: 1,
	}
}

// LogEntry is one record of the debug log.
type LogEntry struct {
	VideoURL string `json:"videoURL"`
	Output   string `json:"output"`
}

// Dispatcher invokes the external downloaders for traversed courses.
// It is safe for concurrent use by several course traversals.
type Dispatcher struct {
	cfg        Config
	runner     Runner
	onProgress progress.Func

	totalVideos  atomic.Int32
	doneVideos   atomic.Int32
	failedVideos atomic.Int32
}

// NewDispatcher creates a Dispatcher. onProgress may be nil.
func NewDispatcher(cfg Config, runner Runner, onProgress progress.Func) *Dispatcher {
	if cfg.MaxConcurrentDownloads < 1 {
		cfg.MaxConcurrentDownloads = 1
	}
	return &Dispatcher{cfg: cfg, runner: runner, onProgress: onProgress}
}

// Preflight checks that the downloader binaries for the configured OS
// variant can be found.
func (d *Dispatcher) Preflight() error {
	tool := d.cfg.YtDlpPath
	if d.cfg.OS == OSWin {
		tool = d.cfg.NM3U8DLPath
	}
	if _, err := exec.LookPath(tool); err != nil {
		return fmt.Errorf("downloader %q not found: %w", tool, err)
	}
	return nil
}

// Progress returns dispatched, failed and total video counts.
func (d *Dispatcher) Progress() (done, failed, total int32) {
	return d.doneVideos.Load(), d.failedVideos.Load(), d.totalVideos.Load()
}

// DispatchCourse downloads every video of bundle. Individual failures are
// reported and counted; the returned error is only ctx's error.
func (d *Dispatcher) DispatchCourse(ctx context.Context, bundle *model.CourseBundle) error {
	d.totalVideos.Add(int32(bundle.VideoCount()))

	// entries is indexed by the video's position in the course so the
	// debug log keeps course order whatever the completion order.
	var (
		entries = make([]LogEntry, bundle.VideoCount())
		failed  atomic.Int32
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.MaxConcurrentDownloads)

	slot := 0
	for _, unit := range bundle.Units {
		for _, video := range unit.Videos {
			i := slot
			slot++
			g.Go(func() error {
				output, err := d.Dispatch(gctx, video, bundle.Title, unit.Unit.Title)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					failed.Add(1)
					d.failedVideos.Add(1)
					d.onProgress.Emit(progress.LevelError, "Error downloading video: %s: %v", video.Title, err)
				} else {
					d.doneVideos.Add(1)
				}
				entries[i] = LogEntry{VideoURL: video.PlaybackURL, Output: output}
				return nil
			})
		}
	}

	waitErr := g.Wait()

	if d.cfg.Debug {
		path := filepath.Join(d.cfg.Root, bundle.Title, DebugLogFileName)
		// slots of videos interrupted by cancellation stay empty
		entries = slices.DeleteFunc(entries, func(e LogEntry) bool { return e.VideoURL == "" })
		if err := ioutils.WriteJSON(context.WithoutCancel(ctx), path, entries); err != nil {
			d.onProgress.Emit(progress.LevelWarning, "Error writing debug log: %v", err)
		}
	}

	if waitErr != nil {
		return waitErr
	}
	if n := failed.Load(); n > 0 {
		d.onProgress.Emit(progress.LevelWarning, "Finished %s, %d videos failed", bundle.Title, n)
	} else {
		d.onProgress.Emit(progress.LevelSuccess, "Course downloaded: %s", bundle.Title)
	}
	return ctx.Err()
}

// Dispatch downloads one video into <root>/<course>/<section>/<unit>/ and
// returns the combined output of the commands it ran.
func (d *Dispatcher) Dispatch(ctx context.Context, video model.VideoDescriptor, courseTitle, unitTitle string) (string, error) {
	dir := video.Dir(d.cfg.Root, courseTitle, unitTitle)
	if err := ioutils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	d.onProgress.Emit(progress.LevelInfo, "Downloading %s", video.OutputName())

	var combined []byte
	for _, cmd := range BuildCommands(d.cfg, video, dir) {
		if err := ctx.Err(); err != nil {
			return string(combined), err
		}

		d.onProgress.Emit(progress.LevelVerbose, "Running %s", cmd)
		out, err := d.runner.Run(ctx, cmd)
		combined = append(combined, out...)
		if d.cfg.Debug && len(out) > 0 {
			d.onProgress.Emit(progress.LevelVerbose, "%s", out)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return string(combined), ctxErr
			}
			return string(combined), &DownloadError{Command: cmd, Output: string(out), Err: err}
		}
	}

	if d.cfg.Debug {
		d.onProgress.Emit(progress.LevelVerbose, "Downloaded: %s", video.Title)
	}
	return string(combined), nil
}
