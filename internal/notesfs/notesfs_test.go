package notesfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestProvisioner(t *testing.T) *Provisioner {
	t.Helper()

	p := New(t.TempDir())
	if err := p.Prepare(); err != nil {
		t.Fatalf("Prepare error: %v", err)
	}

	return p
}

func TestProvision_CreatesDirAndIndex(t *testing.T) {
	t.Parallel()

	p := newTestProvisioner(t)

	if err := p.Provision(7); err != nil {
		t.Fatalf("Provision error: %v", err)
	}

	info, err := os.Stat(p.UserDir(7))
	if err != nil || !info.IsDir() {
		t.Fatalf("user dir missing: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(p.UserDir(7), "_id_list"))
	if err != nil {
		t.Fatalf("index file missing: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("index file not empty: %q", data)
	}
}

func TestProvision_Idempotent(t *testing.T) {
	t.Parallel()

	p := newTestProvisioner(t)

	if err := p.Provision(3); err != nil {
		t.Fatalf("first Provision error: %v", err)
	}
	if err := p.Provision(3); err != nil {
		t.Fatalf("second Provision error: %v", err)
	}
}

func TestProvision_KeepsExistingIndex(t *testing.T) {
	t.Parallel()

	p := newTestProvisioner(t)

	if err := p.Provision(5); err != nil {
		t.Fatalf("Provision error: %v", err)
	}

	index := filepath.Join(p.UserDir(5), "_id_list")
	if err := os.WriteFile(index, []byte("n1\n"), 0o644); err != nil {
		t.Fatalf("seed index: %v", err)
	}

	if err := p.Provision(5); err != nil {
		t.Fatalf("repeat Provision error: %v", err)
	}

	data, err := os.ReadFile(index)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if string(data) != "n1\n" {
		t.Errorf("index content clobbered: %q", data)
	}
}

func TestProvision_FileCollision(t *testing.T) {
	t.Parallel()

	p := newTestProvisioner(t)

	// A regular file squatting on the user path is an administrative fault.
	if err := os.WriteFile(p.UserDir(9), nil, 0o644); err != nil {
		t.Fatalf("seed collision file: %v", err)
	}

	err := p.Provision(9)
	if !errors.Is(err, ErrProvisioning) {
		t.Fatalf("expected ErrProvisioning, got %v", err)
	}
}
