package domestika

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/handiism/domestika-downloader/internal/domestika/dto"
	"github.com/handiism/domestika-downloader/internal/model"
)

const (
	// CourseCardSelector matches course title anchors on a catalogue page.
	CourseCardSelector = "h3.o-course-card__title a"

	// UnitItemSelector matches unit title anchors on a course page.
	UnitItemSelector = "h4.h2.unit-item__title a"
)

// DefaultSectionSelectors are tried in order to find the unit page heading.
var DefaultSectionSelectors = []string{
	"h2.h3.course-header-new__subtitle",
	".course-header-new__subtitle",
	"h1.course-header-new__title",
}

var courseTitleSelectors = []string{
	"h1.course-header-new__title",
	"h1",
	"title",
}

// finalProjectPattern matches a final project unit link: the last path
// segment ends in "final_project", optionally followed by a suffix.
// Go regexps keep no match state, so one compiled value serves every call.
var finalProjectPattern = regexp.MustCompile(`[^/]*-*final_project[^/]*/?$`)

// Options controls extraction behavior.
type Options struct {
	// SkipFinalProject drops unit links that point at the final project.
	SkipFinalProject bool

	// SectionSelectors are tried in order for the unit page heading.
	SectionSelectors []string
}

// DefaultOptions returns the options used by the downloader.
func DefaultOptions() Options {
	return Options{
		SkipFinalProject: true,
		SectionSelectors: DefaultSectionSelectors,
	}
}

// Extractor pulls records out of rendered Domestika pages.
//
// Example usage:
//
//	ex := NewExtractor(DefaultOptions())
//
//	units, err := ex.UnitRefs(courseHTML)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, u := range units {
//	    fmt.Printf("%s -> %s\n", u.Title, u.Link)
//	}
type Extractor struct {
	opts Options
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts Options) *Extractor {
	if len(opts.SectionSelectors) == 0 {
		opts.SectionSelectors = DefaultSectionSelectors
	}
	return &Extractor{opts: opts}
}

// CourseRefs extracts every course card title anchor in document order.
//
// The title is the trimmed anchor text and the link is the raw href
// attribute, or "" when the anchor has none.
func (e *Extractor) CourseRefs(htmlContent string) ([]model.CourseRef, error) {
	doc, err := parse(htmlContent)
	if err != nil {
		return nil, err
	}

	refs := []model.CourseRef{}
	doc.Find(CourseCardSelector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		refs = append(refs, model.CourseRef{
			Title: strings.TrimSpace(s.Text()),
			Link:  href,
		})
	})
	return refs, nil
}

// UnitRefs extracts unit links from a course page in document order,
// dropping final project links when Options.SkipFinalProject is set.
func (e *Extractor) UnitRefs(htmlContent string) ([]model.UnitRef, error) {
	doc, err := parse(htmlContent)
	if err != nil {
		return nil, err
	}

	refs := []model.UnitRef{}
	doc.Find(UnitItemSelector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if e.opts.SkipFinalProject && IsFinalProject(href) {
			return
		}
		refs = append(refs, model.UnitRef{
			Link:  href,
			Title: strings.TrimSpace(s.Text()),
		})
	})
	return refs, nil
}

// VideoDescriptors maps the videos array of the unit page props into
// descriptors carrying the sanitized unit page heading as their section.
//
// propsJSON is the JSON serialization of window.__INITIAL_PROPS__. Empty
// input, "null", or a payload without videos returns an empty slice.
// Indexes are 0-based and follow the order of the videos array.
func (e *Extractor) VideoDescriptors(htmlContent string, propsJSON []byte) ([]model.VideoDescriptor, error) {
	props, err := decodeProps(propsJSON)
	if err != nil {
		return nil, err
	}
	if props == nil || len(props.Videos) == 0 {
		return []model.VideoDescriptor{}, nil
	}

	doc, err := parse(htmlContent)
	if err != nil {
		return nil, err
	}

	return props.ToDescriptors(model.Sanitize(e.sectionTitle(doc))), nil
}

// sectionTitle returns the trimmed text of the first selector that matches.
func (e *Extractor) sectionTitle(doc *goquery.Document) string {
	for _, sel := range e.opts.SectionSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return strings.TrimSpace(s.Text())
		}
	}
	return ""
}

// CourseTitle returns the course heading of a course page, falling back to
// the document title. It is used when the catalogue URL is a single course.
func (e *Extractor) CourseTitle(htmlContent string) string {
	doc, err := parse(htmlContent)
	if err != nil {
		return ""
	}
	for _, sel := range courseTitleSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			if title := strings.TrimSpace(s.Text()); title != "" {
				return title
			}
		}
	}
	return ""
}

// IsFinalProject reports whether a unit link points at the final project.
func IsFinalProject(link string) bool {
	return finalProjectPattern.MatchString(link)
}

func parse(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

func decodeProps(propsJSON []byte) (*dto.InitialProps, error) {
	raw := strings.TrimSpace(string(propsJSON))
	if raw == "" || raw == "null" || raw == "undefined" {
		return nil, nil
	}

	var props dto.InitialProps
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, fmt.Errorf("failed to parse initial props: %w", err)
	}
	return &props, nil
}
