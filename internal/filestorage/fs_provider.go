package filestorage

import (
	"context"
	"embed"
	"io/fs"
	"os"
)

//go:embed static
var static embed.FS

// FSStore reads assets from an fs.FS. A missing name surfaces as the
// fs.ErrNotExist reported by the underlying file system.
type FSStore struct {
	fsys fs.FS
}

func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{fsys: fsys}
}

// Embedded serves the resources bundled with the binary, including the
// default asset of every kind under static/assets.
func Embedded() *FSStore {
	return NewFSStore(static)
}

// NewDirStore serves files below dir on the local disk.
func NewDirStore(dir string) *FSStore {
	return NewFSStore(os.DirFS(dir))
}

func (s *FSStore) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(s.fsys, name)
}
