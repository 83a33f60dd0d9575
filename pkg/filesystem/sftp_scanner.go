package filesystem

import (
	"fmt"
	"path"
	"strings"

	krfs "github.com/kr/fs"
	"github.com/pkg/sftp"
)

// newSFTPScanner walks root through the session with a kr/fs walker,
// following symlinks. onDone runs once the walk ends, successfully or not.
func newSFTPScanner(client *sftp.Client, root string, onDone func()) FileScanner {
	info, err := client.Stat(root)
	if err != nil {
		onDone()
		return errScanner{err: fmt.Errorf("%w: %s: %w", ErrScan, root, err)}
	}

	if !info.IsDir() {
		onDone()
		return errScanner{err: fmt.Errorf("%w: %s is not a directory", ErrScan, root)}
	}

	follow := &followFS{
		root:     root,
		readDir:  client.ReadDir,
		stat:     client.Stat,
		readLink: client.ReadLink,
		isAbs:    path.IsAbs,
		join:     client.Join,
		parent:   path.Dir,
		links:    make(map[string]string),
	}

	return newWalkerScanner(root, krfs.WalkFS(root, follow), relativePath, onDone)
}

// relativePath returns target relative to root using "/" semantics, or "."
// for root itself.
func relativePath(root, target string) (string, error) {
	root = path.Clean(root)
	target = path.Clean(target)

	if root == target {
		return ".", nil
	}

	prefix := root
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	if root == "." {
		prefix = ""
	}

	if !strings.HasPrefix(target, prefix) {
		return "", fmt.Errorf("%s is not under %s", target, root) //nolint:err113 // Path validation error with actual paths
	}

	return strings.TrimPrefix(target, prefix), nil
}
