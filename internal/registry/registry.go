package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// Registry is the set of canonical post URLs already processed in any prior
// run. Posts dropped by the relevance filter are recorded too, so they are
// not re-evaluated every run.
type Registry struct {
	seen map[string]struct{}
}

func New(urls ...string) *Registry {
	r := &Registry{seen: make(map[string]struct{}, len(urls))}
	r.Add(urls...)
	return r
}

func (r *Registry) Contains(url string) bool {
	_, ok := r.seen[url]
	return ok
}

// Add is an idempotent union merge.
func (r *Registry) Add(urls ...string) {
	for _, u := range urls {
		if u != "" {
			r.seen[u] = struct{}{}
		}
	}
}

func (r *Registry) Len() int {
	return len(r.seen)
}

// All returns the members sorted, for stable persistence.
func (r *Registry) All() []string {
	urls := make([]string, 0, len(r.seen))
	for u := range r.seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// LoadFile reads a newline-separated URL file. A missing file yields an
// empty registry.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read known URLs: %w", err)
	}
	return New(strings.Split(strings.TrimSpace(string(data)), "\n")...), nil
}

// SaveFile writes the full membership as sorted lines.
func (r *Registry) SaveFile(path string) error {
	if err := os.WriteFile(path, []byte(strings.Join(r.All(), "\n")), 0o644); err != nil {
		return fmt.Errorf("failed to save known URLs: %w", err)
	}
	return nil
}
