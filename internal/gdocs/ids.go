package gdocs

import (
	"net/url"
	"strings"
)

// ParseDocumentID accepts a bare document ID or a document URL such as
// https://docs.google.com/document/d/<id>/edit and returns the ID.
func ParseDocumentID(s string) string {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "d" && parts[i+1] != "" {
			return parts[i+1]
		}
	}
	if id := u.Query().Get("id"); id != "" {
		return id
	}
	return s
}
