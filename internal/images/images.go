// Package images turns the image paths stored on products into URLs a
// browser can load.
package images

import "strings"

// Placeholder is shown for products without an image.
const Placeholder = "/images/banner-camera.webp"

type Resolver struct {
	// origin is the API base URL without its /api suffix, where uploads
	// are served from.
	origin string
}

func NewResolver(apiBaseURL string) *Resolver {
	base := strings.TrimRight(apiBaseURL, "/")
	return &Resolver{origin: strings.TrimSuffix(base, "/api")}
}

// URL resolves path. Absolute URLs and unknown relative paths pass through;
// /uploads paths are served by the API host.
func (r *Resolver) URL(path string) string {
	switch {
	case path == "":
		return Placeholder
	case strings.HasPrefix(path, "http"):
		return path
	case strings.HasPrefix(path, "/uploads"):
		return r.origin + path
	}
	return path
}

// URLs resolves every path in paths.
func (r *Resolver) URLs(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = r.URL(p)
	}
	return out
}
