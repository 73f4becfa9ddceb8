package domestika

import (
	"testing"
)

func TestExtractor_CourseRefs(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		wantCount int
		wantFirst string
		wantLink  string
	}{
		{
			name: "two course cards",
			html: `<html><body>
				<div class="o-course-card"><h3 class="o-course-card__title"><a href="https://www.domestika.org/en/courses/1-ink">  Ink Basics  </a></h3></div>
				<div class="o-course-card"><h3 class="o-course-card__title"><a href="/en/courses/2-watercolor">Watercolor</a></h3></div>
			</body></html>`,
			wantCount: 2,
			wantFirst: "Ink Basics",
			wantLink:  "https://www.domestika.org/en/courses/1-ink",
		},
		{
			name:      "anchor without href",
			html:      `<h3 class="o-course-card__title"><a>No Link</a></h3>`,
			wantCount: 1,
			wantFirst: "No Link",
			wantLink:  "",
		},
		{
			name:      "anchors outside cards ignored",
			html:      `<h3 class="other"><a href="/x">X</a></h3><h2 class="o-course-card__title"><a href="/y">Y</a></h2>`,
			wantCount: 0,
		},
	}

	ex := NewExtractor(DefaultOptions())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs, err := ex.CourseRefs(tt.html)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(refs) != tt.wantCount {
				t.Fatalf("got %d refs, want %d", len(refs), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if refs[0].Title != tt.wantFirst {
				t.Errorf("Title = %q, want %q", refs[0].Title, tt.wantFirst)
			}
			if refs[0].Link != tt.wantLink {
				t.Errorf("Link = %q, want %q", refs[0].Link, tt.wantLink)
			}
		})
	}
}

func TestExtractor_CourseRefsDocumentOrder(t *testing.T) {
	html := `<h3 class="o-course-card__title"><a href="/c/3">C</a></h3>
		<h3 class="o-course-card__title"><a href="/c/1">A</a></h3>
		<h3 class="o-course-card__title"><a href="/c/2">B</a></h3>`

	refs, err := NewExtractor(DefaultOptions()).CourseRefs(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"C", "A", "B"}
	for i, w := range want {
		if refs[i].Title != w {
			t.Errorf("refs[%d].Title = %q, want %q", i, refs[i].Title, w)
		}
	}
}

const courseHTML = `<html><body>
	<h4 class="h2 unit-item__title"><a href="https://www.domestika.org/en/courses/1-ink/units/10-intro">Intro</a></h4>
	<h4 class="h2 unit-item__title"><a href="https://www.domestika.org/en/courses/1-ink/units/11-tools">Tools</a></h4>
	<h4 class="h2 unit-item__title"><a href="https://www.domestika.org/en/courses/1-ink/final_project">Final project</a></h4>
	<h4 class="h2 unit-item__title"><a href="https://www.domestika.org/en/courses/1-ink/units/12-wrap-up">Wrap up</a></h4>
</body></html>`

func TestExtractor_UnitRefsSkipsFinalProject(t *testing.T) {
	ex := NewExtractor(DefaultOptions())

	// Run twice: a stateful matcher would flip results between calls.
	for run := 0; run < 2; run++ {
		units, err := ex.UnitRefs(courseHTML)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"Intro", "Tools", "Wrap up"}
		if len(units) != len(want) {
			t.Fatalf("run %d: got %d units, want %d", run, len(units), len(want))
		}
		for i, w := range want {
			if units[i].Title != w {
				t.Errorf("run %d: units[%d].Title = %q, want %q", run, i, units[i].Title, w)
			}
		}
	}
}

func TestExtractor_UnitRefsKeepFinalProject(t *testing.T) {
	ex := NewExtractor(Options{SkipFinalProject: false})

	units, err := ex.UnitRefs(courseHTML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 4 {
		t.Errorf("got %d units, want 4", len(units))
	}
}

func TestIsFinalProject(t *testing.T) {
	tests := []struct {
		link string
		want bool
	}{
		{"https://www.domestika.org/en/courses/1-ink/final_project", true},
		{"/courses/1-ink/units/99-final_project", true},
		{"/courses/1-ink/units/99--final_project_review/", true},
		{"/courses/1-ink/units/10-intro", false},
		{"/courses/final_project-course/units/10-intro", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsFinalProject(tt.link); got != tt.want {
			t.Errorf("IsFinalProject(%q) = %v, want %v", tt.link, got, tt.want)
		}
	}
}

const unitHTML = `<html><body>
	<h2 class="h3 course-header-new__subtitle"> Unit 1: Getting started </h2>
</body></html>`

func TestExtractor_VideoDescriptors(t *testing.T) {
	props := []byte(`{"videos":[
		{"video":{"playbackURL":"https://cdn.example/1.m3u8","title":"Welcome / hello"}},
		{"video":{"playbackURL":"https://cdn.example/2.m3u8","title":"Materials"}}
	]}`)

	videos, err := NewExtractor(DefaultOptions()).VideoDescriptors(unitHTML, props)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("got %d videos, want 2", len(videos))
	}

	if videos[0].Title != "Welcome - hello" {
		t.Errorf("Title = %q, want %q", videos[0].Title, "Welcome - hello")
	}
	if videos[0].Section != "Unit 1- Getting started" {
		t.Errorf("Section = %q, want %q", videos[0].Section, "Unit 1- Getting started")
	}
	for i, v := range videos {
		if v.Index != i {
			t.Errorf("videos[%d].Index = %d", i, v.Index)
		}
	}
	if videos[1].PlaybackURL != "https://cdn.example/2.m3u8" {
		t.Errorf("PlaybackURL = %q", videos[1].PlaybackURL)
	}
}

func TestExtractor_VideoDescriptorsSectionFallback(t *testing.T) {
	html := `<h1 class="course-header-new__title">Fallback Heading</h1>`
	props := []byte(`{"videos":[{"video":{"playbackURL":"u","title":"t"}}]}`)

	videos, err := NewExtractor(DefaultOptions()).VideoDescriptors(html, props)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if videos[0].Section != "Fallback Heading" {
		t.Errorf("Section = %q, want %q", videos[0].Section, "Fallback Heading")
	}
}

func TestExtractor_VideoDescriptorsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		props string
	}{
		{"no props", ""},
		{"null props", "null"},
		{"no videos field", `{"unit":{"id":1}}`},
		{"empty videos", `{"videos":[]}`},
		{"null videos", `{"videos":null}`},
		{"entries without video", `{"videos":[{},{"video":null}]}`},
	}

	ex := NewExtractor(DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videos, err := ex.VideoDescriptors(unitHTML, []byte(tt.props))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if videos == nil || len(videos) != 0 {
				t.Errorf("expected empty non-nil slice, got %#v", videos)
			}
		})
	}
}

func TestExtractor_VideoDescriptorsMalformedProps(t *testing.T) {
	_, err := NewExtractor(DefaultOptions()).VideoDescriptors(unitHTML, []byte(`{"videos":[`))
	if err == nil {
		t.Error("expected error for malformed props")
	}
}

func TestIsCourseURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.domestika.org/en/courses/1234-ink-basics", true},
		{"https://www.domestika.org/en/courses/1234-ink-basics/", true},
		{"https://www.domestika.org/en/someone/courses_lists/42-favorites", false},
		{"https://www.domestika.org/en/courses/1234-ink-basics/units/5-intro", false},
		{"::bad", false},
	}
	for _, tt := range tests {
		if got := IsCourseURL(tt.url); got != tt.want {
			t.Errorf("IsCourseURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestCourseListingURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://d.org/courses/1-ink", "https://d.org/courses/1-ink/course"},
		{"https://d.org/courses/1-ink/", "https://d.org/courses/1-ink/course"},
		{"https://d.org/courses/1-ink/course", "https://d.org/courses/1-ink/course"},
	}
	for _, tt := range tests {
		if got := CourseListingURL(tt.in); got != tt.want {
			t.Errorf("CourseListingURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveLink(t *testing.T) {
	base := "https://www.domestika.org/en/user/courses_lists/1-list"
	tests := []struct {
		href, want string
	}{
		{"/en/courses/2-ink", "https://www.domestika.org/en/courses/2-ink"},
		{"https://other.example/x", "https://other.example/x"},
		{"", base},
	}
	for _, tt := range tests {
		if got := ResolveLink(base, tt.href); got != tt.want {
			t.Errorf("ResolveLink(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestExtractor_CourseTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"heading", `<html><head><title>Doc</title></head><body><h1 class="course-header-new__title"> Ink Basics </h1></body></html>`, "Ink Basics"},
		{"title fallback", `<html><head><title>Only Title</title></head><body></body></html>`, "Only Title"},
		{"nothing", `<html><body><p>x</p></body></html>`, ""},
	}
	ex := NewExtractor(DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ex.CourseTitle(tt.html); got != tt.want {
				t.Errorf("CourseTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
