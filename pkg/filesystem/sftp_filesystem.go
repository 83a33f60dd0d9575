package filesystem

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/sftp"
)

// SFTPFileSystem is a remote tree reached through a pool of SFTP sessions.
// Paths always use "/".
type SFTPFileSystem struct {
	pool *SFTPClientPool
}

// NewSFTPFileSystem opens poolSize SFTP sessions over conn.
func NewSFTPFileSystem(conn *SFTPConnection, poolSize int) (*SFTPFileSystem, error) {
	return NewSFTPFileSystemWithDialer(poolSize, func() (*sftp.Client, error) {
		return sftp.NewClient(conn.SSHClient())
	})
}

// NewSFTPFileSystemWithDialer builds the filesystem from any session source,
// such as an in-process server in tests.
func NewSFTPFileSystemWithDialer(poolSize int, dial ClientDialer) (*SFTPFileSystem, error) {
	pool, err := NewSFTPClientPool(poolSize, dial)
	if err != nil {
		return nil, fmt.Errorf("failed to create SFTP client pool: %w", err)
	}

	return &SFTPFileSystem{pool: pool}, nil
}

// Chtimes changes the access and modification times of a remote file.
func (fs *SFTPFileSystem) Chtimes(path string, atime, mtime time.Time) error {
	return fs.withClient(func(client *sftp.Client) error {
		if err := client.Chtimes(path, atime, mtime); err != nil {
			return fmt.Errorf("failed to change times for remote file %s: %w", path, err)
		}

		return nil
	})
}

// Close closes every pooled session.
func (fs *SFTPFileSystem) Close() error {
	return fs.pool.Close()
}

// Create creates or truncates a remote file. The returned File holds a
// session until closed.
func (fs *SFTPFileSystem) Create(path string) (File, error) {
	client, err := fs.pool.Acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire SFTP client: %w", err)
	}

	file, err := client.Create(path)
	if err != nil {
		fs.pool.Release(client)
		return nil, fmt.Errorf("failed to create remote file %s: %w", path, err)
	}

	return newSFTPFile(file, client, fs.pool), nil
}

// Mkdir creates one remote directory. SFTP servers apply their own
// permissions, so perm is ignored.
func (fs *SFTPFileSystem) Mkdir(path string, _ os.FileMode) error {
	return fs.withClient(func(client *sftp.Client) error {
		if err := client.Mkdir(path); err != nil {
			return fmt.Errorf("failed to create remote directory %s: %w", path, err)
		}

		return nil
	})
}

// MkdirAll creates a remote directory and any missing parents.
func (fs *SFTPFileSystem) MkdirAll(path string, _ os.FileMode) error {
	return fs.withClient(func(client *sftp.Client) error {
		if err := client.MkdirAll(path); err != nil {
			return fmt.Errorf("failed to create remote directory %s: %w", path, err)
		}

		return nil
	})
}

// Open opens a remote file for reading.
func (fs *SFTPFileSystem) Open(path string) (File, error) {
	client, err := fs.pool.Acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire SFTP client: %w", err)
	}

	file, err := client.Open(path)
	if err != nil {
		fs.pool.Release(client)
		return nil, fmt.Errorf("failed to open remote file %s: %w", path, err)
	}

	return newSFTPFile(file, client, fs.pool), nil
}

// PoolSize returns the number of pooled sessions.
func (fs *SFTPFileSystem) PoolSize() int {
	return fs.pool.Size()
}

// Remove removes a remote file or empty directory.
func (fs *SFTPFileSystem) Remove(path string) error {
	return fs.withClient(func(client *sftp.Client) error {
		if err := client.Remove(path); err != nil {
			return fmt.Errorf("failed to remove remote file %s: %w", path, err)
		}

		return nil
	})
}

// Scan walks a remote tree. The walker holds one session until the scan
// finishes or fails.
func (fs *SFTPFileSystem) Scan(root string) FileScanner {
	client, err := fs.pool.Acquire()
	if err != nil {
		return errScanner{err: fmt.Errorf("%w: failed to acquire SFTP client: %w", ErrScan, err)}
	}

	return newSFTPScanner(client, root, func() { fs.pool.Release(client) })
}

// Separator returns '/'.
func (fs *SFTPFileSystem) Separator() byte {
	return '/'
}

// ModTimePrecision returns one second. SFTP v3 carries mtimes as whole
// seconds since the epoch.
func (fs *SFTPFileSystem) ModTimePrecision() time.Duration {
	return time.Second
}

// Stat returns file information for a remote entry.
func (fs *SFTPFileSystem) Stat(path string) (os.FileInfo, error) {
	var info os.FileInfo

	err := fs.withClient(func(client *sftp.Client) error {
		var err error

		info, err = client.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat remote file %s: %w", path, err)
		}

		return nil
	})

	return info, err
}

func (fs *SFTPFileSystem) withClient(op func(*sftp.Client) error) error {
	client, err := fs.pool.Acquire()
	if err != nil {
		return fmt.Errorf("failed to acquire SFTP client: %w", err)
	}
	defer fs.pool.Release(client)

	return op(client)
}
