// Package media stores uploaded image bytes and hands back reference paths
// of the form /uploads/<name>. Anything beyond that (resizing, CDNs) is out
// of scope.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const refPrefix = "/uploads/"

type Store interface {
	// Save writes the bytes under a generated name derived from the original
	// filename and returns the /uploads/... reference path.
	Save(filename string, r io.Reader) (string, error)
	// Remove deletes the file behind a reference path. Unknown refs and
	// already-missing files are not errors.
	Remove(ref string) error
}

// DiskStore keeps files in a single local directory, the way the uploads
// folder of the original server worked.
type DiskStore struct {
	dir string
	now func() time.Time
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir, now: time.Now}, nil
}

func (s *DiskStore) Save(filename string, r io.Reader) (string, error) {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), strings.TrimSuffix(base, ext), ext)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return refPrefix + name, nil
}

func (s *DiskStore) Remove(ref string) error {
	if !strings.HasPrefix(ref, refPrefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(ref, refPrefix))
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Dir returns the backing directory, for static file serving.
func (s *DiskStore) Dir() string { return s.dir }
