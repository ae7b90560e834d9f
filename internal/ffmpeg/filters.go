package ffmpeg

import "strings"

// FilterBuilder helps construct ffmpeg filter chains
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// HFlip mirrors the frame horizontally
func (fb *FilterBuilder) HFlip() *FilterBuilder {
	fb.filters = append(fb.filters, "hflip")
	return fb
}

// VFlip mirrors the frame vertically
func (fb *FilterBuilder) VFlip() *FilterBuilder {
	fb.filters = append(fb.filters, "vflip")
	return fb
}

// Custom adds a custom filter string
func (fb *FilterBuilder) Custom(filter string) *FilterBuilder {
	if filter != "" {
		fb.filters = append(fb.filters, filter)
	}
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	return strings.Join(fb.filters, ",")
}
