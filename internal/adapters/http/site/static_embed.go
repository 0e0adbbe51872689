package site

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed static
var staticFS embed.FS

// PublicFS returns the site's public tree: dir when set, otherwise the
// embedded copy.
func PublicFS(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return staticFS
	}
	return sub
}
