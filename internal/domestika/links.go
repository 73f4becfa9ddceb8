package domestika

import (
	"net/url"
	"regexp"
	"strings"
)

// CoursePageSuffix is appended to a course link to reach its unit listing.
const CoursePageSuffix = "/course"

// courseURLPattern matches a single course URL such as
// https://www.domestika.org/en/courses/1234-some-course.
var courseURLPattern = regexp.MustCompile(`/courses/\d+-[^/]+/?$`)

// IsCourseURL reports whether pageURL points at a single course rather than
// a courses list.
func IsCourseURL(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	if strings.Contains(u.Path, "/courses_lists/") {
		return false
	}
	return courseURLPattern.MatchString(u.Path)
}

// CourseListingURL returns the URL of the page listing a course's units.
func CourseListingURL(courseLink string) string {
	link := strings.TrimRight(courseLink, "/")
	if strings.HasSuffix(link, CoursePageSuffix) {
		return link
	}
	return link + CoursePageSuffix
}

// ResolveLink resolves href against base. Absolute hrefs are returned as-is
// and unparsable input falls back to href.
func ResolveLink(base, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
