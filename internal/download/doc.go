// Package download hands traversed videos to the external downloaders.
//
// # Dispatcher
//
// The Dispatcher receives a CourseBundle and, for every video:
//
//  1. Ensures <root>/<course>/<section>/<unit>/ exists
//  2. Builds the download command(s) for the configured OS variant
//  3. Runs them through a Runner
//
// On the mac variant one yt-dlp invocation downloads the video and embeds
// the "en" and configured subtitle languages. On the win variant
// N_m3u8DL-RE runs twice: once selecting the best video and audio, once
// extracting subtitles converted to SRT.
//
// # Basic Usage
//
//	d := download.NewDispatcher(cfg, download.ExecRunner{}, func(e progress.Event) {
//	    fmt.Println(e.Message)
//	})
//	if err := d.Preflight(); err != nil {
//	    log.Fatal(err)
//	}
//	d.DispatchCourse(ctx, bundle)
//
// # Failures
//
// A failing command is reported as an Error event carrying a
// *DownloadError and never stops the rest of the batch.
//
// # Debug Log
//
// With Config.Debug set, a flat JSON list of {videoURL, output} records is
// written to <root>/<course>/debug_log.json once the course is dispatched.
package download
