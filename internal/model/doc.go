// Package model defines the core data structures used throughout
// the domestika-downloader application.
//
// # Course
//
// CourseRef is a course discovered on a catalogue page, and CourseBundle
// is the fully traversed course ready for dispatch:
//
//	ref := model.CourseRef{Title: "Intro to Ink", Link: "https://www.domestika.org/en/courses/1-intro-to-ink"}
//	bundle := model.NewCourseBundle(ref)
//	bundle.AddUnit(unit, videos)
//
// # Video
//
// VideoDescriptor is a single downloadable item. Its Index is the 0-based
// position inside its unit and is used as the output file name prefix:
//
//	video.OutputName() // "0_Welcome"
//	video.Dir(root, bundle.Title, unit.Title) // root/course/section/unit
//
// # Sanitization
//
// Every title that ends up in a path goes through Sanitize, which replaces
// the characters / \ ? % * : | " < > with '-' and trims surrounding space.
package model
