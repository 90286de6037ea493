package storage

import (
	"strings"
)

// URLResolver turns a stored file path into a URL clients can fetch.
type URLResolver interface {
	URL(path string) string
}

// StaticURLResolver serves files from the API host under /files.
type StaticURLResolver struct {
	BaseURL string
}

func (r StaticURLResolver) URL(path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(r.BaseURL, "/") + "/files/" + strings.TrimLeft(path, "/")
}
