package filesystem

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DialTimeout bounds the TCP connect and SSH handshake.
const DialTimeout = 15 * time.Second

// ErrNoAuthMethods is returned when neither an agent nor a key file is usable.
var ErrNoAuthMethods = errors.New("no SSH authentication methods available (tried SSH agent and default keys)")

// SFTPConnection is an authenticated SSH connection to one host. SFTP
// sessions for the client pool are opened on top of it.
type SFTPConnection struct {
	sshClient *ssh.Client
	host      string
	port      int
	user      string
}

// Connect dials host and authenticates as user with the SSH agent and the
// default key files. Host keys are checked against ~/.ssh/known_hosts when
// that file exists.
func Connect(host string, port int, user string) (*SFTPConnection, error) {
	authMethods := sshAuthMethods()
	if len(authMethods) == 0 {
		return nil, ErrNoAuthMethods
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback(),
		Timeout:         DialTimeout,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))

	sshClient, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("SSH connection to %s failed: %w", addr, err)
	}

	return &SFTPConnection{sshClient: sshClient, host: host, port: port, user: user}, nil
}

// Close closes the SSH connection.
func (c *SFTPConnection) Close() error {
	if c.sshClient == nil {
		return nil
	}

	return c.sshClient.Close()
}

// SSHClient returns the underlying SSH client.
func (c *SFTPConnection) SSHClient() *ssh.Client {
	return c.sshClient
}

// String returns user@host:port.
func (c *SFTPConnection) String() string {
	return fmt.Sprintf("%s@%s:%d", c.user, c.host, c.port)
}

func hostKeyCallback() ssh.HostKeyCallback {
	home, err := os.UserHomeDir()
	if err == nil {
		callback, err := knownhosts.New(filepath.Join(home, ".ssh", "known_hosts"))
		if err == nil {
			return callback
		}
	}

	slog.Warn("known_hosts unavailable, host keys will not be verified")

	return ssh.InsecureIgnoreHostKey() //nolint:gosec // No known_hosts to verify against.
}

// sshAuthMethods returns the agent first, then any unencrypted default keys.
func sshAuthMethods() []ssh.AuthMethod {
	var methods []ssh.AuthMethod

	if socket := os.Getenv("SSH_AUTH_SOCK"); socket != "" {
		if conn, err := net.Dial("unix", socket); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return methods
	}

	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyData, err := os.ReadFile(filepath.Join(home, ".ssh", name)) // #nosec G304 - fixed key locations
		if err != nil {
			continue
		}

		// Passphrase-protected keys fail to parse and are skipped.
		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			continue
		}

		methods = append(methods, ssh.PublicKeys(signer))
	}

	return methods
}
