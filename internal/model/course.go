package model

// CourseRef is a course title/link pair produced by catalogue extraction.
//
// Link is kept exactly as it appeared in the href attribute; it may be
// relative and may be empty if the anchor carried no href.
type CourseRef struct {
	Title string
	Link  string
}

// UnitRef is a unit link found on a course page.
type UnitRef struct {
	// Link is the unit page URL.
	Link string

	// Title is the visible anchor text, trimmed.
	Title string
}

// UnitVideos pairs a unit with the videos extracted from its page,
// in page order.
type UnitVideos struct {
	Unit   UnitRef
	Videos []VideoDescriptor
}

// CourseBundle is the result of traversing one course.
//
// Units appear in the order they were listed on the course page, and
// each unit keeps its videos in extraction order.
type CourseBundle struct {
	// Course is the catalogue entry this bundle was built from.
	Course CourseRef

	// Title is the sanitized course title used as a directory name.
	Title string

	Units []UnitVideos
}

// NewCourseBundle creates an empty bundle for the given course.
func NewCourseBundle(course CourseRef) *CourseBundle {
	return &CourseBundle{
		Course: course,
		Title:  Sanitize(course.Title),
	}
}

// AddUnit appends a unit and its videos. Video indexes are reassigned to be
// 0-based and contiguous in the order given.
func (b *CourseBundle) AddUnit(unit UnitRef, videos []VideoDescriptor) {
	indexed := make([]VideoDescriptor, len(videos))
	for i, v := range videos {
		v.Index = i
		indexed[i] = v
	}
	b.Units = append(b.Units, UnitVideos{Unit: unit, Videos: indexed})
}

// VideoCount returns the total number of videos across all units.
func (b *CourseBundle) VideoCount() int {
	n := 0
	for _, u := range b.Units {
		n += len(u.Videos)
	}
	return n
}
