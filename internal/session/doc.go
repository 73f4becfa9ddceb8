// Package session loads the Domestika session cookie from an exported
// cookie file and turns it into a browser credential.
//
// Two export formats are understood:
//   - a JSON array of {"name": ..., "value": ...} records, as written by
//     most browser cookie-export extensions
//   - a Netscape cookies.txt file (tab separated, seven fields per line)
//
// Only the record named CookieName is consulted. A file without that
// record still loads; the returned Credential has an empty Value and
// Validate reports ErrNoSessionCookie.
//
//	cred, err := session.LoadSession("cookies.json")
//	if err != nil {
//	    log.Fatal(err) // *session.ConfigError
//	}
//	if err := cred.Validate(); err != nil {
//	    log.Println("warning:", err)
//	}
package session
