package flip

import (
	"path/filepath"
	"strings"
)

// Marker tags the file name of a mirrored video.
const Marker = "_flipped"

// FlippedName returns the counterpart file name of a video. Names that
// carry Marker lose it; others gain it before ext. Applying it twice
// returns the original name.
func FlippedName(name, ext string) string {
	if strings.Contains(name, Marker) {
		return strings.ReplaceAll(name, Marker, "")
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + Marker + ext
}
