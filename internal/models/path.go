package models

import (
	"strings"

	"github.com/toyz/apimod/internal/errors"
)

// ImplPath names the definition package an implementation module targets
type ImplPath struct {
	Raw      string
	Absolute bool
	// Segments are the path parts with "." parts dropped. ".." parts are
	// kept so that "../a" and "./a" stay distinct.
	Segments []string
	Loc      errors.SourceLocation
}

// IsEmpty reports whether the path has no segments
func (p ImplPath) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Last returns the final segment, or "" for an empty path
func (p ImplPath) Last() string {
	if p.IsEmpty() {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

func (p ImplPath) String() string {
	if p.Raw != "" {
		return p.Raw
	}
	if p.Absolute {
		return strings.Join(p.Segments, "/")
	}
	return "./" + strings.Join(p.Segments, "/")
}
