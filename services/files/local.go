// Package filesvc stores uploaded files on the local disk.
package filesvc

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
)

var ErrFileNotFound = errors.Wrap(core.ErrNotFound, "file")

// Stored describes a saved upload.
type Stored struct {
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	SavedAs  string `json:"saved_as"`
}

// LocalStore saves files flat in one directory under random names.
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(conf *core.Config) (*LocalStore, error) {
	dir, err := filepath.Abs(conf.Uploads.Dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolving uploads dir")
	}
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating uploads dir")
	}
	return &LocalStore{dir: dir, urlPrefix: "/api/uploads/"}, nil
}

// Save copies r to "<uuid><ext>", ext being the extension of the original name (".bin" when it has none).
func (s *LocalStore) Save(r io.Reader, originalName string) (Stored, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if ext == "" || ext == "." {
		ext = ".bin"
	}
	name := uuid.NewString() + ext

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Stored{}, errors.Wrap(err, "creating file")
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return Stored{}, errors.Wrap(err, "writing file")
	}
	if err = f.Close(); err != nil {
		return Stored{}, errors.Wrap(err, "closing file")
	}
	return Stored{Path: s.urlPrefix + name, FileName: filepath.Base(originalName), SavedAs: name}, nil
}

// Path returns the location on disk of the stored file name.
// Names that are not a plain file of the store directory are reported as not found.
func (s *LocalStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrFileNotFound
	}
	fp := filepath.Join(s.dir, name)
	info, err := os.Stat(fp)
	if err != nil || info.IsDir() {
		return "", ErrFileNotFound
	}
	return fp, nil
}
