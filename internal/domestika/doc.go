// Package domestika extracts catalogue, course and unit information from
// rendered Domestika pages.
//
// The package handles three page kinds:
//
//  1. Catalogue (courses list) pages: course title/link pairs
//  2. Course pages: unit links, optionally without the final project unit
//  3. Unit pages: video descriptors from the page's __INITIAL_PROPS__ object
//
// All extraction is pure: it works on HTML that has already been rendered
// by a browser and on the JSON serialization of the embedded props object.
//
// # Catalogue Extraction
//
//	ex := domestika.NewExtractor(domestika.DefaultOptions())
//	courses, err := ex.CourseRefs(listHTML)
//	for _, c := range courses {
//	    fmt.Println(c.Title, c.Link)
//	}
//
// # Unit Page Data
//
// Unit pages expose their video list through window.__INITIAL_PROPS__,
// populated by page scripts after load. The navigator serializes that
// object to JSON and the extractor maps its videos array, tagging every
// video with the sanitized unit page heading:
//
//	videos, err := ex.VideoDescriptors(unitHTML, propsJSON)
//
// Missing props or an empty videos array yield an empty slice, not an error.
package domestika
