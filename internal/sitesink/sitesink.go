// Package sitesink appends raw datagrams to one file per site, the way
// the original broker's "per-site-append" output mode does.
package sitesink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Pool keeps one append-only *os.File per sanitized site name, opened
// lazily on first write and closed together by Close.
type Pool struct {
	dir string

	mu    sync.Mutex
	files map[string]*os.File

	// Unknown receives raw bytes for records whose site is empty.
	// Nil means such records are silently counted and dropped.
	Unknown func(raw []byte)

	unknownCount int64
}

// NewPool creates a Pool that appends into dir, creating it if necessary.
func NewPool(dir string) (*Pool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sitesink: create dir: %w", err)
	}
	return &Pool{dir: dir, files: make(map[string]*os.File)}, nil
}

// Write appends raw to the file for site, opening it first if needed. An
// empty site is routed to Unknown, if set.
func (p *Pool) Write(site string, raw []byte) error {
	if site == "" {
		p.mu.Lock()
		p.unknownCount++
		p.mu.Unlock()
		if p.Unknown != nil {
			p.Unknown(raw)
		}
		return nil
	}

	name := sanitize(site)

	p.mu.Lock()
	defer p.mu.Unlock()

	f, ok := p.files[name]
	if !ok {
		var err error
		f, err = p.open(name)
		if err != nil {
			return err
		}
		p.files[name] = f
	}

	if _, err := f.Write(raw); err != nil {
		return fmt.Errorf("sitesink: write %s: %w", name, err)
	}
	if _, err := f.Write([]byte("\n")); err != nil {
		return fmt.Errorf("sitesink: write %s: %w", name, err)
	}
	return nil
}

// UnknownCount returns how many siteless records were routed to Unknown
// (or dropped, if Unknown is nil).
func (p *Pool) UnknownCount() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unknownCount
}

func (p *Pool) open(name string) (*os.File, error) {
	path := filepath.Join(p.dir, name)

	if fi, err := os.Lstat(path); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("sitesink: refusing to follow symlink %s", path)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sitesink: open %s: %w", path, err)
	}
	return f, nil
}

// Close closes every open file.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for _, f := range p.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.files = make(map[string]*os.File)
	return firstErr
}

func sanitize(site string) string {
	var b strings.Builder
	b.Grow(len(site))
	for _, r := range site {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
