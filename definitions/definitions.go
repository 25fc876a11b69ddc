// Package definitions embeds the command definition files, one directory per category.
package definitions

import (
	"embed"
	"io/fs"
	"os"
)

// FS holds every definition file.
//
//go:embed admin fun info
var FS embed.FS

// Admin is the directory holding moderation commands. It is registered separately from the rest.
const Admin = "admin"

// Open returns the definitions in dir, or the embedded ones if dir is empty.
func Open(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	return FS
}
