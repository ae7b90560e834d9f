package fsstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// annotationFileKey names the video an annotation document belongs to.
const annotationFileKey = "file"

// AnnotationStore reads and writes per-video tag annotation documents.
type AnnotationStore struct{}

// NewAnnotationStore creates an annotation store.
func NewAnnotationStore() *AnnotationStore {
	return &AnnotationStore{}
}

// Copy reads the annotation document at src, points its "file" field at
// videoName and writes the result to dst. All other fields are carried
// over unchanged.
func (s *AnnotationStore) Copy(src, dst, videoName string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading annotation %s: %w", src, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding annotation %s: %w", src, err)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	name, err := json.Marshal(videoName)
	if err != nil {
		return fmt.Errorf("encoding video name: %w", err)
	}
	doc[annotationFileKey] = name

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding annotation: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	return writeFileAtomic(dst, out)
}
