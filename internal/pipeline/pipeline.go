// Package pipeline wires the session, browser, traversal and dispatch
// components into one run. The CLI and the TUI both drive a Pipeline.
package pipeline

import (
	"context"
	"errors"

	"github.com/handiism/domestika-downloader/internal/browser"
	"github.com/handiism/domestika-downloader/internal/config"
	"github.com/handiism/domestika-downloader/internal/domestika"
	"github.com/handiism/domestika-downloader/internal/download"
	"github.com/handiism/domestika-downloader/internal/model"
	"github.com/handiism/domestika-downloader/internal/progress"
	"github.com/handiism/domestika-downloader/internal/session"
	"github.com/handiism/domestika-downloader/internal/traverse"
)

// Pipeline runs one traversal and dispatches every completed course.
type Pipeline struct {
	settings   *config.Settings
	onProgress progress.Func
	dryRun     bool

	open       traverse.SessionFactory
	runner     download.Runner
	dispatcher *download.Dispatcher
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithDryRun traverses without dispatching; bundles are reported as
// Info events instead.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) { p.dryRun = dryRun }
}

// WithSessionFactory replaces the chromedp-backed browser sessions.
func WithSessionFactory(open traverse.SessionFactory) Option {
	return func(p *Pipeline) { p.open = open }
}

// WithRunner replaces the os/exec command runner.
func WithRunner(r download.Runner) Option {
	return func(p *Pipeline) { p.runner = r }
}

// New validates settings, loads the session credential and prepares the
// components. A missing or unreadable cookie file is fatal
// (*session.ConfigError); a file without the session cookie only produces
// a Warning event. Unless running dry, the downloader binary must be on PATH.
func New(settings *config.Settings, onProgress progress.Func, opts ...Option) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		settings:   settings,
		onProgress: onProgress,
		runner:     download.ExecRunner{},
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.open == nil {
		cred, err := session.LoadSession(settings.CookiesPath)
		if err != nil {
			return nil, err
		}
		if err := cred.Validate(); err != nil {
			onProgress.Emit(progress.LevelWarning, "%v; course pages will render without account access", err)
		}
		browserOpts := settings.ToBrowserOptions()
		p.open = func(ctx context.Context) (traverse.Page, error) {
			return browser.Open(ctx, cred, browserOpts)
		}
	}

	p.dispatcher = download.NewDispatcher(settings.ToDispatchConfig(), p.runner, onProgress)

	if !p.dryRun {
		if _, isExec := p.runner.(download.ExecRunner); isExec {
			if err := p.dispatcher.Preflight(); err != nil {
				return nil, err
			}
		}
	}

	return p, nil
}

// Run traverses the catalogue and dispatches each course as soon as its
// traversal completes.
func (p *Pipeline) Run(ctx context.Context) (*traverse.Result, error) {
	extractor := domestika.NewExtractor(p.settings.ToExtractorOptions())
	orch := traverse.New(p.settings.ToTraverseConfig(), p.open, extractor, p.handleBundle, p.onProgress)

	result, err := orch.Run(ctx)
	if err != nil {
		return result, err
	}

	if len(result.Courses) > 0 && len(result.Bundles()) == 0 {
		return result, errors.New("no course could be traversed")
	}
	if p.dryRun {
		p.onProgress.Emit(progress.LevelSuccess, "All Courses Traversed")
	} else {
		p.onProgress.Emit(progress.LevelSuccess, "All Courses Downloaded")
	}
	return result, nil
}

// Progress returns dispatched, failed and total video counts.
func (p *Pipeline) Progress() (done, failed, total int32) {
	return p.dispatcher.Progress()
}

func (p *Pipeline) handleBundle(ctx context.Context, bundle *model.CourseBundle) {
	if p.dryRun {
		p.report(bundle)
		return
	}
	if err := p.dispatcher.DispatchCourse(ctx, bundle); err != nil {
		p.onProgress.Emit(progress.LevelWarning, "Dispatch of %s interrupted: %v", bundle.Title, err)
	}
}

func (p *Pipeline) report(bundle *model.CourseBundle) {
	p.onProgress.Emit(progress.LevelInfo, "%s", bundle.Title)
	for _, unit := range bundle.Units {
		p.onProgress.Emit(progress.LevelInfo, "  %s (%d videos)", unit.Unit.Title, len(unit.Videos))
		for _, v := range unit.Videos {
			p.onProgress.Emit(progress.LevelVerbose, "    %s -> %s",
				v.OutputName(), v.Dir(p.settings.OutputRoot, bundle.Title, unit.Unit.Title))
		}
	}
}
