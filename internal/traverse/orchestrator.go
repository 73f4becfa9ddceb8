package traverse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/domestika-downloader/internal/browser"
	"github.com/handiism/domestika-downloader/internal/domestika"
	"github.com/handiism/domestika-downloader/internal/model"
	"github.com/handiism/domestika-downloader/internal/progress"
	"golang.org/x/sync/errgroup"
)

// Page is a controlled browser page. *browser.Session implements it.
type Page interface {
	Navigate(ctx context.Context, url string, wait browser.Wait) (*browser.Document, error)
	Close() error
}

// SessionFactory opens a new browser session.
type SessionFactory func(ctx context.Context) (Page, error)

// BundleFunc receives each completed course bundle. It may be called from
// several goroutines at once under the Parallel strategy.
type BundleFunc func(ctx context.Context, bundle *model.CourseBundle)

// Strategy selects how courses are scheduled.
type Strategy int

const (
	// Sequential reuses one session and processes one course at a time.
	Sequential Strategy = iota

	// Parallel opens a session per course, bounded by MaxConcurrentCourses.
	Parallel
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy converts a configuration name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sequential":
		return Sequential, nil
	case "parallel", "":
		return Parallel, nil
	default:
		return 0, fmt.Errorf("unknown concurrency strategy %q", name)
	}
}

// Config holds traversal settings.
type Config struct {
	// CatalogueURL is the courses list page, or a single course page.
	CatalogueURL string

	Strategy Strategy

	// MaxConcurrentCourses bounds Parallel traversal. Values below 1 mean 1.
	MaxConcurrentCourses int
}

// CourseResult is the outcome of traversing one course.
type CourseResult struct {
	Course model.CourseRef

	// Bundle is set when every unit of the course was visited.
	Bundle *model.CourseBundle

	// Err is set when the course could not be traversed.
	Err error
}

// Result lists one CourseResult per catalogue entry, in catalogue order.
type Result struct {
	Courses []CourseResult
}

// Bundles returns the completed bundles in catalogue order.
func (r *Result) Bundles() []*model.CourseBundle {
	var bundles []*model.CourseBundle
	for _, c := range r.Courses {
		if c.Bundle != nil {
			bundles = append(bundles, c.Bundle)
		}
	}
	return bundles
}

// Failed returns the results of courses that could not be traversed.
func (r *Result) Failed() []CourseResult {
	var failed []CourseResult
	for _, c := range r.Courses {
		if c.Err != nil {
			failed = append(failed, c)
		}
	}
	return failed
}

// Orchestrator drives the list -> course -> unit traversal.
type Orchestrator struct {
	cfg        Config
	open       SessionFactory
	extractor  *domestika.Extractor
	onBundle   BundleFunc
	onProgress progress.Func
}

// New creates an Orchestrator. onBundle and onProgress may be nil.
func New(cfg Config, open SessionFactory, extractor *domestika.Extractor, onBundle BundleFunc, onProgress progress.Func) *Orchestrator {
	if cfg.MaxConcurrentCourses < 1 {
		cfg.MaxConcurrentCourses = 1
	}
	return &Orchestrator{
		cfg:        cfg,
		open:       open,
		extractor:  extractor,
		onBundle:   onBundle,
		onProgress: onProgress,
	}
}

// Run traverses the catalogue and returns the per-course results.
//
// An error is returned only when the catalogue itself cannot be read or
// ctx is cancelled; course failures are recorded in the Result.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	page, err := o.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser session: %w", err)
	}

	courses, listing, err := o.catalogue(ctx, page)
	if err != nil {
		page.Close()
		return nil, err
	}
	o.onProgress.Emit(progress.LevelInfo, "%d Courses Detected", len(courses))

	result := &Result{Courses: make([]CourseResult, len(courses))}

	switch {
	case listing != nil:
		// a single course URL: its listing is already rendered on page
		defer page.Close()
		result.Courses[0] = o.runCourse(ctx, page, courses[0], listing)
	case o.cfg.Strategy == Sequential:
		defer page.Close()
		for i, course := range courses {
			if err := ctx.Err(); err != nil {
				result.Courses[i] = CourseResult{Course: course, Err: err}
				continue
			}
			result.Courses[i] = o.runCourse(ctx, page, course, nil)
		}
	default:
		page.Close()
		o.runParallel(ctx, courses, result)
	}

	return result, ctx.Err()
}

func (o *Orchestrator) runParallel(ctx context.Context, courses []model.CourseRef, result *Result) {
	var g errgroup.Group
	g.SetLimit(o.cfg.MaxConcurrentCourses)

	for i, course := range courses {
		g.Go(func() error {
			// each goroutine owns its own slot
			result.Courses[i] = o.runCourseSession(ctx, course)
			return nil
		})
	}
	_ = g.Wait()
}

// runCourseSession traverses a course in its own browser session.
func (o *Orchestrator) runCourseSession(ctx context.Context, course model.CourseRef) CourseResult {
	if err := ctx.Err(); err != nil {
		return CourseResult{Course: course, Err: err}
	}
	page, err := o.open(ctx)
	if err != nil {
		err = fmt.Errorf("failed to open browser session: %w", err)
		o.onProgress.Emit(progress.LevelError, "Error scraping course %s: %v", course.Title, err)
		return CourseResult{Course: course, Err: err}
	}
	defer page.Close()
	return o.runCourse(ctx, page, course, nil)
}

// runCourse traverses one course. listing, when set, is the course's
// already loaded unit listing page.
func (o *Orchestrator) runCourse(ctx context.Context, page Page, course model.CourseRef, listing *browser.Document) CourseResult {
	o.onProgress.Emit(progress.LevelInfo, "Scraping Course: %s", course.Title)

	bundle, err := o.traverseCourse(ctx, page, course, listing)
	if err != nil {
		o.onProgress.Emit(progress.LevelError, "Error scraping course %s: %v", course.Title, err)
		return CourseResult{Course: course, Err: err}
	}

	o.onProgress.Emit(progress.LevelSuccess, "All Videos Found: %s (%d units, %d videos)", bundle.Title, len(bundle.Units), bundle.VideoCount())
	if o.onBundle != nil {
		o.onBundle(ctx, bundle)
	}
	return CourseResult{Course: course, Bundle: bundle}
}

// catalogue loads the starting page and returns its courses. A single
// course URL yields one CourseRef titled from the course page, along with
// that rendered page.
func (o *Orchestrator) catalogue(ctx context.Context, page Page) ([]model.CourseRef, *browser.Document, error) {
	start := o.cfg.CatalogueURL
	if start == "" {
		return nil, nil, errors.New("catalogue URL is empty")
	}

	if domestika.IsCourseURL(start) {
		doc, err := page.Navigate(ctx, domestika.CourseListingURL(start), browser.WaitDOM)
		if err != nil {
			return nil, nil, err
		}
		title := o.extractor.CourseTitle(doc.HTML)
		if title == "" {
			title = start
		}
		return []model.CourseRef{{Title: title, Link: start}}, doc, nil
	}

	doc, err := page.Navigate(ctx, start, browser.WaitDOM)
	if err != nil {
		return nil, nil, err
	}

	refs, err := o.extractor.CourseRefs(doc.HTML)
	if err != nil {
		return nil, nil, err
	}
	for i := range refs {
		if refs[i].Link != "" {
			refs[i].Link = domestika.ResolveLink(start, refs[i].Link)
		}
	}
	return refs, nil, nil
}

// traverseCourse visits the course page, unless listing already holds it,
// and all of its units.
func (o *Orchestrator) traverseCourse(ctx context.Context, page Page, course model.CourseRef, listing *browser.Document) (*model.CourseBundle, error) {
	if course.Link == "" {
		return nil, errors.New("course has no link")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := listing
	if doc == nil {
		var err error
		doc, err = page.Navigate(ctx, domestika.CourseListingURL(course.Link), browser.WaitDOM)
		if err != nil {
			return nil, err
		}
	}

	units, err := o.extractor.UnitRefs(doc.HTML)
	if err != nil {
		return nil, err
	}
	o.onProgress.Emit(progress.LevelInfo, "%d Units Detected", len(units))

	bundle := model.NewCourseBundle(course)
	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		videos, err := o.unitVideos(ctx, page, doc.URL, unit)
		if err != nil {
			return nil, err
		}
		bundle.AddUnit(unit, videos)
	}

	return bundle, nil
}

func (o *Orchestrator) unitVideos(ctx context.Context, page Page, courseURL string, unit model.UnitRef) ([]model.VideoDescriptor, error) {
	if unit.Link == "" {
		o.onProgress.Emit(progress.LevelWarning, "Unit %q has no link, skipping", unit.Title)
		return nil, nil
	}

	unitURL := domestika.ResolveLink(courseURL, unit.Link)
	doc, err := page.Navigate(ctx, unitURL, browser.WaitProps)
	if err != nil {
		return nil, err
	}

	videos, err := o.extractor.VideoDescriptors(doc.HTML, doc.Props)
	if err != nil {
		o.onProgress.Emit(progress.LevelWarning, "Unreadable video data on %s: %v", unitURL, err)
		return nil, nil
	}
	o.onProgress.Emit(progress.LevelVerbose, "%s: %d videos", unit.Title, len(videos))
	return videos, nil
}
