package filesystem

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pkg/sftp"
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("sftp client pool is closed")

// ClientDialer opens one SFTP session.
type ClientDialer func() (*sftp.Client, error)

// SFTPClientPool hands out a fixed number of SFTP sessions. A buffered
// channel is the semaphore; Acquire blocks while every session is in use.
type SFTPClientPool struct {
	clients chan *sftp.Client
	done    chan struct{}
	size    int
	mu      sync.Mutex
	closed  bool
}

// NewSFTPClientPool opens size sessions with dial. On failure, every
// session opened so far is closed.
func NewSFTPClientPool(size int, dial ClientDialer) (*SFTPClientPool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool size must be greater than 0, got %d", size) //nolint:err113 // Validation error with actual value
	}

	pool := &SFTPClientPool{
		clients: make(chan *sftp.Client, size),
		done:    make(chan struct{}),
		size:    size,
	}

	for i := range size {
		client, err := dial()
		if err != nil {
			_ = pool.drain()
			return nil, fmt.Errorf("failed to open SFTP session %d/%d: %w", i+1, size, err)
		}

		pool.clients <- client
	}

	return pool, nil
}

// Acquire takes a session from the pool, blocking until one is free.
func (p *SFTPClientPool) Acquire() (*sftp.Client, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}

	select {
	case client := <-p.clients:
		return client, nil
	case <-p.done:
		return nil, ErrPoolClosed
	}
}

// Release returns a session. Sessions released after Close are closed.
func (p *SFTPClientPool) Release(client *sftp.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = client.Close()
		return
	}

	p.clients <- client
}

// Size returns the number of sessions the pool was created with.
func (p *SFTPClientPool) Size() int {
	return p.size
}

// Close closes idle sessions and makes later Acquire calls fail. Sessions
// still checked out are closed when released.
func (p *SFTPClientPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.done)

	return p.drain()
}

func (p *SFTPClientPool) drain() error {
	var errs []error

	for {
		select {
		case client := <-p.clients:
			errs = append(errs, client.Close())
		default:
			return errors.Join(errs...)
		}
	}
}
