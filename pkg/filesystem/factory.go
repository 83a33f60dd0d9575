package filesystem

import (
	"fmt"
)

// Opened is a FileSystem bound to a root, with a closer for any
// connection behind it.
type Opened struct {
	FS    FileSystem
	Root  string
	close func() error
}

// Close releases the connection behind the filesystem, if any.
func (o *Opened) Close() error {
	if o.close == nil {
		return nil
	}

	return o.close()
}

// Open resolves a root string to a filesystem. Local paths use the real
// disk; sftp:// URLs connect and open poolSize sessions.
func Open(root string, poolSize int) (*Opened, error) {
	loc, err := ParsePath(root)
	if err != nil {
		return nil, err
	}

	if !loc.IsRemote {
		return &Opened{FS: NewRealFileSystem(), Root: loc.Path}, nil
	}

	conn, err := Connect(loc.Host, loc.Port, loc.User)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s@%s:%d: %w", loc.User, loc.Host, loc.Port, err)
	}

	remote, err := NewSFTPFileSystem(conn, poolSize)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Opened{
		FS:   remote,
		Root: loc.Path,
		close: func() error {
			poolErr := remote.Close()
			if err := conn.Close(); err != nil {
				return err //nolint:wrapcheck // Closing the SSH transport
			}

			return poolErr
		},
	}, nil
}
