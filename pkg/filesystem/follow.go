package filesystem

import (
	"errors"
	"io/fs"
	"os"
)

// maxLinkDepth bounds how many followed directory links may nest inside
// one walked path. It stops link cycles that neither file identity nor the
// link targets reveal.
const maxLinkDepth = 8

// followFS is a kr/fs filesystem that describes what a symlink points at
// instead of the link itself, so the walker descends into linked
// directories and linked files carry their target's size and mtime.
// Dangling links and links back to one of their own ancestors are left out
// of listings.
type followFS struct {
	root     string
	readDir  func(dir string) ([]os.FileInfo, error)
	stat     func(name string) (os.FileInfo, error)
	readLink func(name string) (string, error)
	isAbs    func(name string) bool
	join     func(elem ...string) string
	parent   func(name string) string
	// links maps each followed directory link to the path it resolves to,
	// or "" when the link could not be read.
	links map[string]string
}

func (f *followFS) Lstat(name string) (os.FileInfo, error) {
	return f.stat(name)
}

func (f *followFS) Join(elem ...string) string {
	return f.join(elem...)
}

func (f *followFS) ReadDir(dir string) ([]os.FileInfo, error) {
	list, err := f.readDir(dir)
	if err != nil {
		return nil, err
	}

	out := list[:0]

	for _, info := range list {
		if info.Mode()&os.ModeSymlink == 0 {
			out = append(out, info)
			continue
		}

		name := f.join(dir, info.Name())

		target, err := f.stat(name)
		if err != nil {
			continue
		}

		if target.IsDir() {
			resolved := f.resolve(dir, name)
			if f.cyclic(dir, resolved, target) {
				continue
			}

			f.links[name] = resolved
		}

		out = append(out, linkedInfo{FileInfo: target, name: info.Name()})
	}

	return out, nil
}

// resolve returns where the link name inside dir points, with followed
// links in dir replaced by their targets. It returns "" when the link
// cannot be read.
func (f *followFS) resolve(dir, name string) string {
	target, err := f.readLink(name)
	if err != nil {
		return ""
	}

	if !f.isAbs(target) {
		target = f.join(f.canonical(dir), target)
	}

	return target
}

// canonical rewrites the longest followed-link prefix of p to the link's
// resolved target.
func (f *followFS) canonical(p string) string {
	for q := p; len(q) >= len(f.root); q = f.parent(q) {
		if target := f.links[q]; target != "" {
			return f.join(target, p[len(q):])
		}

		if f.parent(q) == q {
			break
		}
	}

	return p
}

// cyclic reports whether descending into a link from dir would revisit an
// ancestor of dir, or nest more than maxLinkDepth followed links.
func (f *followFS) cyclic(dir, resolved string, target os.FileInfo) bool {
	if resolved != "" {
		for q := f.canonical(dir); ; q = f.parent(q) {
			if q == resolved {
				return true
			}

			if f.parent(q) == q {
				break
			}
		}
	}

	depth := 0

	for p := dir; len(p) >= len(f.root); p = f.parent(p) {
		if _, ok := f.links[p]; ok {
			depth++
		}

		if ancestor, err := f.stat(p); err == nil && os.SameFile(ancestor, target) {
			return true
		}

		if f.parent(p) == p {
			break
		}
	}

	return depth >= maxLinkDepth
}

// linkedInfo is a link target's FileInfo under the link's own name.
type linkedInfo struct {
	os.FileInfo
	name string
}

func (i linkedInfo) Name() string { return i.name }

// readLocalDir lists dir without following links, like os.Lstat per entry.
// Entries that vanish between the listing and the stat are dropped.
func readLocalDir(dir string) ([]os.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err //nolint:wrapcheck // The walker reports it with the path
	}

	infos := make([]os.FileInfo, 0, len(entries))

	for _, entry := range entries {
		info, err := entry.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, err //nolint:wrapcheck // The walker reports it with the path
		}

		infos = append(infos, info)
	}

	return infos, nil
}
