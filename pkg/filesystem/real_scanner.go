package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	krfs "github.com/kr/fs"
)

// newRealFileScanner walks root on the local disk, following symlinks. A
// root that cannot be read fails on the first call to Next.
func newRealFileScanner(root string) FileScanner {
	info, err := os.Stat(root)
	if err != nil {
		return errScanner{err: fmt.Errorf("%w: %w", ErrScan, err)}
	}

	if !info.IsDir() {
		return errScanner{err: fmt.Errorf("%w: %s is not a directory", ErrScan, root)}
	}

	follow := &followFS{
		root:     root,
		readDir:  readLocalDir,
		stat:     os.Stat,
		readLink: os.Readlink,
		isAbs:    filepath.IsAbs,
		join:     filepath.Join,
		parent:   filepath.Dir,
		links:    make(map[string]string),
	}

	return newWalkerScanner(root, krfs.WalkFS(root, follow), filepath.Rel, nil)
}
