// Package traverse walks a Domestika catalogue: list page, then every
// course page, then every unit page, producing one CourseBundle per course.
//
// # Orchestrator
//
//	orch := traverse.New(cfg, browserFactory, extractor, dispatch, onProgress)
//	result, err := orch.Run(ctx)
//
// Every finished bundle is handed to the BundleFunc before Run returns,
// so dispatch of one course can overlap traversal of another.
//
// # Scheduling
//
// Sequential opens a single browser session and reuses it for the whole
// run; courses are processed one after another in catalogue order.
//
// Parallel gives every course its own session and runs up to
// MaxConcurrentCourses traversals at once. Nothing mutable is shared
// between course traversals.
//
// Either way a course failure (navigation error, missing link) is
// reported and recorded in the Result; sibling courses continue.
package traverse
