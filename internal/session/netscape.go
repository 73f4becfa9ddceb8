package session

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
)

// httpOnlyPrefix marks HttpOnly cookies in curl/yt-dlp style exports.
const httpOnlyPrefix = "#HttpOnly_"

var errNotCookieFile = errors.New("neither a JSON cookie array nor a Netscape cookies.txt")

// parseNetscape parses a Netscape cookies.txt file.
// Format: domain flag path secure expiration name value
func parseNetscape(data []byte) ([]cookieRecord, error) {
	var records []cookieRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, httpOnlyPrefix)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 7 {
			return nil, errNotCookieFile
		}
		records = append(records, cookieRecord{Name: parts[5], Value: parts[6]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errNotCookieFile
	}
	return records, nil
}
