// Package browser drives headless Chrome through chromedp to render
// Domestika pages.
//
// A Session owns one browser process with a single controlled page.
// The page carries the session credential, has no navigation timeout,
// and aborts stylesheet, font and image requests before they reach the
// network; only the DOM and the page's embedded props are needed.
//
// # Basic Usage
//
//	s, err := browser.Open(ctx, cred, browser.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	doc, err := s.Navigate(ctx, unitURL, browser.WaitProps)
//	fmt.Println(len(doc.HTML), string(doc.Props))
package browser
