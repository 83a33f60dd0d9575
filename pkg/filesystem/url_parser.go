package filesystem

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultSFTPPort is used when an sftp:// URL has no port.
const DefaultSFTPPort = 22

// ErrInvalidSFTPURL is wrapped by every sftp:// parse failure.
var ErrInvalidSFTPURL = errors.New("invalid SFTP URL")

// Location is a parsed root: a local path or a remote SFTP directory.
type Location struct {
	IsRemote bool

	// Path is the local path, or the path on the remote host.
	Path string

	Host string
	Port int
	User string
}

// ParsePath parses a root string. Strings starting with sftp:// are remote
// and take the form sftp://user@host[:port]/path; anything else is a local
// path.
//
// Remote paths are relative to the login directory unless written with a
// double slash:
//
//	sftp://joe@host/data     -> data (under the home directory)
//	sftp://joe@host//srv/data -> /srv/data
//	sftp://joe@host          -> .
func ParsePath(raw string) (*Location, error) {
	if !strings.HasPrefix(raw, "sftp://") {
		return &Location{Path: raw}, nil
	}

	return parseSFTPURL(raw)
}

// String renders the location back into the form ParsePath accepts.
func (l *Location) String() string {
	if !l.IsRemote {
		return l.Path
	}

	remote := "/" + l.Path
	if l.Path == "." {
		remote = ""
	}

	return fmt.Sprintf("sftp://%s@%s:%d%s", l.User, l.Host, l.Port, remote)
}

func parseSFTPURL(raw string) (*Location, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSFTPURL, err)
	}

	if parsed.User == nil || parsed.User.Username() == "" {
		return nil, fmt.Errorf("%w: missing username (sftp://user@host/path)", ErrInvalidSFTPURL)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidSFTPURL)
	}

	port := DefaultSFTPPort
	if portStr := parsed.Port(); portStr != "" {
		port, err = strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("%w: invalid port %q", ErrInvalidSFTPURL, portStr)
		}
	}

	remote := parsed.Path

	switch {
	case remote == "" || remote == "/":
		remote = "."
	case strings.HasPrefix(remote, "//"):
		remote = remote[1:]
	default:
		remote = strings.TrimPrefix(remote, "/")
	}

	return &Location{
		IsRemote: true,
		Path:     remote,
		Host:     host,
		Port:     port,
		User:     parsed.User.Username(),
	}, nil
}
