package mingle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const maxUploadSize = 10 << 20

// Uploads writes user-submitted files to a directory that is served
// statically. Names are random so uploads never collide or overwrite.
type Uploads struct {
	dir string
}

func NewUploads(dir string) (*Uploads, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Uploads{dir: dir}, nil
}

// Save writes r to a new file named by a random uuid, keeping the original
// extension, and returns the file name.
func (u *Uploads) Save(r io.Reader, originalName string) (string, error) {
	name := uuid.New().String() + filepath.Ext(originalName)

	f, err := os.Create(filepath.Join(u.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing file: %w", err)
	}

	return name, nil
}
