package blob

import (
	"chocan/internal/infra/blob/fs"
)

// NewFilesystem returns a directory-backed Store rooted at root.
func NewFilesystem(root string) (Store, error) {
	st, err := fs.New(root)
	if err != nil {
		return nil, err
	}
	return st, nil
}
