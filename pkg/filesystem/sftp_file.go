package filesystem

import (
	"os"
	"sync"

	"github.com/pkg/sftp"
)

// sftpFile is an open remote file that holds a pooled session until it is
// closed.
type sftpFile struct {
	file    *sftp.File
	client  *sftp.Client
	pool    *SFTPClientPool
	release sync.Once
}

func newSFTPFile(file *sftp.File, client *sftp.Client, pool *SFTPClientPool) *sftpFile {
	return &sftpFile{file: file, client: client, pool: pool}
}

func (f *sftpFile) Read(p []byte) (int, error) {
	return f.file.Read(p) //nolint:wrapcheck // io.Reader contract
}

func (f *sftpFile) Write(p []byte) (int, error) {
	return f.file.Write(p) //nolint:wrapcheck // io.Writer contract
}

func (f *sftpFile) Stat() (os.FileInfo, error) {
	return f.file.Stat() //nolint:wrapcheck // Mirrors os.File.Stat
}

// Close closes the remote file and returns the session to the pool.
// Calling it twice releases the session once.
func (f *sftpFile) Close() error {
	err := f.file.Close()

	f.release.Do(func() {
		f.pool.Release(f.client)
	})

	return err //nolint:wrapcheck // Mirrors os.File.Close
}
