package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Symlink points link at target, replacing whatever link currently names.
// The new link is created beside the old one and renamed over it, so link
// never dangles at a stale target.
func Symlink(target, link string) error {
	if LinksTo(link, target) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return err
	}
	tmp := link + ".tmp"
	_ = os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, link); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func LinksTo(link, want string) bool {
	got, err := os.Readlink(link)
	if err != nil {
		return false
	}
	return got == want
}

// Exists reports whether path names anything, following symlinks.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates dir if absent; an existing directory is fine, anything
// else is returned.
func EnsureDir(dir string) error {
	err := os.Mkdir(dir, 0o755)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return err
	}
	if fi, statErr := os.Stat(dir); statErr == nil && !fi.IsDir() {
		return &fs.PathError{Op: "mkdir", Path: dir, Err: errors.New("not a directory")}
	}
	return nil
}

// WriteIfChanged writes data to path unless the file already holds exactly
// that content.
func WriteIfChanged(path string, data []byte, perm os.FileMode) error {
	if old, err := os.ReadFile(path); err == nil && string(old) == string(data) {
		return nil
	}
	return os.WriteFile(path, data, perm)
}
