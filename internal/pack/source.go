package pack

import (
	"context"
	"path"

	"github.com/Faultbox/packstudio/internal/controls"
	"github.com/Faultbox/packstudio/internal/files"
)

// Source resolves the URLs found in manifests. URLs are relative to the
// project root, with forward slashes.
type Source interface {
	// PreloadFileString reads the text of url into a cache.
	PreloadFileString(ctx context.Context, url string) controls.PreloadResult
	// FileString returns the cached text of url.
	FileString(url string) (string, bool)
	// Image returns the shared image of url, or nil when no such file exists.
	Image(url string) controls.Image
	// Exists reports whether url names a file.
	Exists(url string) bool
}

// siblingURL returns the URL of name in the folder of url.
func siblingURL(url, name string) string {
	dir := path.Dir(url)
	if dir == "." {
		return name
	}
	return dir + "/" + name
}

// ProjectSource reads pack files from an opened project.
type ProjectSource struct {
	project *files.Project
}

// NewProjectSource returns a Source backed by project.
func NewProjectSource(project *files.Project) *ProjectSource {
	return &ProjectSource{project: project}
}

// Project returns the backing project.
func (s *ProjectSource) Project() *files.Project { return s.project }

func (s *ProjectSource) PreloadFileString(ctx context.Context, url string) controls.PreloadResult {
	return s.project.Storage().PreloadFileString(ctx, url)
}

func (s *ProjectSource) FileString(url string) (string, bool) {
	if !s.Exists(url) {
		return "", false
	}
	content := s.project.Storage().FileString(url)
	return content, content != "" || s.project.File(url).Size() == 0
}

func (s *ProjectSource) Image(url string) controls.Image {
	f := s.project.File(url)
	if f == nil || !f.IsFile() {
		return nil
	}
	return s.project.Image(f)
}

func (s *ProjectSource) Exists(url string) bool {
	f := s.project.File(url)
	return f != nil && f.IsFile()
}
