// Package fsbadge stores badge PNGs under a media root, mirroring the
// "qr_codes/<file>" references handed to clients.
package fsbadge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

const subdir = "qr_codes"

type BadgeStore struct {
	root string
}

// New returns a store rooted at root; the qr_codes directory is created
// on first write.
func New(root string) *BadgeStore {
	return &BadgeStore{root: root}
}

// resolve maps a reference to a file path, rejecting anything that would
// escape the qr_codes directory.
func (b *BadgeStore) resolve(ref string) (string, error) {
	clean := path.Clean(ref)
	dir, name := path.Split(clean)
	if dir != subdir+"/" || name == "" || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("bad badge ref %q: %w", ref, store.ErrNotFound)
	}
	return filepath.Join(b.root, subdir, name), nil
}

func (b *BadgeStore) PutBadge(_ context.Context, name string, png []byte) (string, error) {
	ref := subdir + "/" + name
	p, err := b.resolve(ref)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("mkdir badge dir: %w", err)
	}

	// Write-then-rename so a reader never sees a half-written PNG.
	tmp, err := os.CreateTemp(filepath.Dir(p), name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create badge temp: %w", err)
	}
	if _, err := tmp.Write(png); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write badge: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close badge: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename badge: %w", err)
	}
	return ref, nil
}

func (b *BadgeStore) GetBadge(_ context.Context, ref string) ([]byte, error) {
	p, err := b.resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read badge: %w", err)
	}
	return data, nil
}

func (b *BadgeStore) DeleteBadge(_ context.Context, ref string) error {
	p, err := b.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete badge: %w", err)
	}
	return nil
}
