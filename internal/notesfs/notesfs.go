// Package notesfs provisions per-user note storage: one directory per user
// id under <base>/notes, holding an append-only _id_list index file.
package notesfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

const indexFileName = "_id_list"

// ErrProvisioning marks administrative filesystem faults: the user path is
// taken by a regular file, or the process lacks permission to create it.
var ErrProvisioning = errors.New("failed to create a user folder")

type Provisioner struct {
	base string
}

func New(basePath string) *Provisioner {
	return &Provisioner{base: basePath}
}

// Prepare creates the shared notes root. Called once at startup.
func (p *Provisioner) Prepare() error {
	const op = "notesfs.Prepare"

	if err := os.MkdirAll(filepath.Join(p.base, "notes"), 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p *Provisioner) UserDir(userID int64) string {
	return filepath.Join(p.base, "notes", strconv.FormatInt(userID, 10))
}

// Provision creates the user directory and its empty index file. A
// directory already present is fine; retried requests must be able to run
// this twice. A regular file squatting on the path or a permission denial
// is an ErrProvisioning fault.
func (p *Provisioner) Provision(userID int64) error {
	const op = "notesfs.Provision"

	dir := p.UserDir(userID)

	if err := os.Mkdir(dir, 0o755); err != nil {
		switch {
		case errors.Is(err, fs.ErrExist):
			info, statErr := os.Stat(dir)
			if statErr != nil || !info.IsDir() {
				return fmt.Errorf("%s: path taken by non-directory: %w", op, ErrProvisioning)
			}
		case errors.Is(err, fs.ErrPermission):
			return fmt.Errorf("%s: %w", op, ErrProvisioning)
		default:
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	f, err := os.OpenFile(filepath.Join(dir, indexFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%s: %w", op, ErrProvisioning)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return f.Close()
}
