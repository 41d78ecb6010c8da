package domain

import "time"

// Resource is a stored content item as seen by the search subsystem.
// Content holds the raw bytes handed to the extraction pipeline.
type Resource struct {
	ID           string
	RootPath     string
	Type         string
	DateCreated  time.Time
	DateModified time.Time
	Properties   map[string]string
	Content      []byte
}

// Name returns the last path segment of the resource's root path.
func (r *Resource) Name() string {
	p := r.RootPath
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}
