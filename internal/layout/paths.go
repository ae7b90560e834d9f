package layout

import (
	"path/filepath"
	"strings"
)

// Kind identifies one family of derived artifacts in a project tree.
type Kind string

const (
	KindVideos   Kind = "videos"
	KindFrames   Kind = "frames"
	KindTags     Kind = "tags"
	KindFeatures Kind = "features"
)

// AnnotationExt is the extension of per-video tag annotation files.
const AnnotationExt = ".json"

// BaseDir returns <root>/<kind>_<split>.
func BaseDir(root, split string, kind Kind) string {
	return filepath.Join(root, string(kind)+"_"+split)
}

// ClassDir returns the directory holding class artifacts of the given kind.
// Features are nested by model and depth; use FeatureClassDir for those.
func ClassDir(root, split string, kind Kind, class string) string {
	return filepath.Join(BaseDir(root, split, kind), class)
}

// VideosDir returns <root>/videos_<split>/<class>.
func VideosDir(root, split, class string) string {
	return ClassDir(root, split, KindVideos, class)
}

// TagsDir returns <root>/tags_<split>/<class>.
func TagsDir(root, split, class string) string {
	return ClassDir(root, split, KindTags, class)
}

// FramesDir returns <root>/frames_<split>/<class>.
func FramesDir(root, split, class string) string {
	return ClassDir(root, split, KindFrames, class)
}

// FeaturesDir returns <root>/features_<split>/<model>/<depth>.
func FeaturesDir(root, split, model, depth string) string {
	return filepath.Join(BaseDir(root, split, KindFeatures), model, depth)
}

// FeatureClassDir returns <root>/features_<split>/<model>/<depth>/<class>.
func FeatureClassDir(root, split, model, depth, class string) string {
	return filepath.Join(FeaturesDir(root, split, model, depth), class)
}

// AnnotationName maps a video file name to its annotation file name.
func AnnotationName(video string) string {
	return strings.TrimSuffix(video, filepath.Ext(video)) + AnnotationExt
}

// AnnotationFile returns the annotation path for a video of a class.
func AnnotationFile(root, split, class, video string) string {
	return filepath.Join(TagsDir(root, split, class), AnnotationName(video))
}
