// Package store holds the two persistence collaborators of the chat server:
// the credential store and the bounded chat history. Both keep their state in
// memory behind one mutex each and rewrite a small line-oriented file on every
// mutation, which is the durability model the server was built around.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	ErrUserExists    = errors.New("user already exists")
	ErrUnknownUser   = errors.New("user does not exist")
	ErrWrongPassword = errors.New("incorrect password")
)

// Credentials maps user names to clear-text passwords. Passwords are stored
// as given; see the server docs for why this weakness is kept rather than
// fixed.
type Credentials struct {
	mu     sync.Mutex
	path   string
	users  map[string]string
	logger *slog.Logger
}

func NewCredentials(path string, logger *slog.Logger) *Credentials {
	if logger == nil {
		logger = slog.Default()
	}
	return &Credentials{
		path:   path,
		users:  make(map[string]string),
		logger: logger,
	}
}

// Load reads the credentials file. A missing file is not an error: the store
// starts empty. Malformed lines are skipped and logged so a parse problem is
// distinguishable from an unreadable file.
func (c *Credentials) Load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read credentials file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		name, password, ok := strings.Cut(line, "|")
		if !ok || name == "" {
			c.logger.Warn("skipping malformed credentials line", "line", line)
			continue
		}
		c.users[name] = password
	}
	return nil
}

// Register stores a new user. The existence check and the insert run under
// one lock so two concurrent signups for the same name cannot both succeed.
// The file is rewritten before the lock is released; a write failure is
// logged and the in-memory entry is kept.
func (c *Credentials) Register(name, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.users[name]; ok {
		return ErrUserExists
	}
	c.users[name] = password

	if err := c.saveLocked(); err != nil {
		c.logger.Error("failed to persist credentials", "error", err)
	}
	return nil
}

// Verify checks a name/password pair. Unknown user is reported before a
// password mismatch, matching the protocol's distinct error replies.
func (c *Credentials) Verify(name, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, ok := c.users[name]
	if !ok {
		return ErrUnknownUser
	}
	if stored != password {
		return ErrWrongPassword
	}
	return nil
}

func (c *Credentials) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.users)
}

func (c *Credentials) saveLocked() error {
	var b strings.Builder
	for name, password := range c.users {
		b.WriteString(name)
		b.WriteString("|")
		b.WriteString(password)
		b.WriteString("\n")
	}
	if err := os.WriteFile(c.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	return nil
}
