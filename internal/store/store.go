// Package store is the durable string key-value collaborator a session
// persists to, the moral equivalent of browser local storage.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store is a flat string key-value store.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Memory is an in-process Store.
type Memory struct {
	items map[string]string
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.items[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	delete(m.items, key)
	return nil
}

// File keeps every key in one JSON object on disk and rewrites the file on
// each mutation through a temp file and rename.
type File struct {
	path string
	mem  *Memory
}

// OpenFile loads path if it exists. A missing file is an empty store.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, mem: NewMemory()}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	if len(b) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(b, &f.mem.items); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", path, err)
	}
	if f.mem.items == nil {
		f.mem.items = make(map[string]string)
	}
	return f, nil
}

func (f *File) Path() string { return f.path }

func (f *File) Get(key string) (string, bool, error) {
	return f.mem.Get(key)
}

func (f *File) Set(key, value string) error {
	if old, ok := f.mem.items[key]; ok && old == value {
		return nil
	}
	_ = f.mem.Set(key, value)
	return f.flush()
}

func (f *File) Delete(key string) error {
	if _, ok := f.mem.items[key]; !ok {
		return nil
	}
	_ = f.mem.Delete(key)
	return f.flush()
}

func (f *File) flush() error {
	b, err := json.MarshalIndent(f.mem.items, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// Prefixed namespaces every key of an underlying Store.
type Prefixed struct {
	prefix string
	inner  Store
}

// WithPrefix returns a Store writing "<prefix>:<key>" into inner.
func WithPrefix(inner Store, prefix string) *Prefixed {
	return &Prefixed{prefix: prefix + ":", inner: inner}
}

func (p *Prefixed) Get(key string) (string, bool, error) { return p.inner.Get(p.prefix + key) }
func (p *Prefixed) Set(key, value string) error { return p.inner.Set(p.prefix+key, value) }
func (p *Prefixed) Delete(key string) error { return p.inner.Delete(p.prefix + key) }
