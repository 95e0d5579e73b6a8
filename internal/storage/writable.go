package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const writeProbeName = ".write_test"

// SelectWritableDir returns preferred when it can be created and written to,
// and fallback otherwise. The probe writes and removes a throwaway file. When
// the fallback is chosen the probe failure is returned alongside it so the
// caller can report it; the returned directory is always usable as-is.
func SelectWritableDir(preferred, fallback string) (string, error) {
	if err := probeWritable(preferred); err != nil {
		return fallback, fmt.Errorf("actions dir %s not writable, using %s: %w", preferred, fallback, err)
	}
	return preferred, nil
}

func probeWritable(dir string) error {
	if dir == "" {
		return fmt.Errorf("empty directory")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	probe := filepath.Join(dir, writeProbeName)
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return err
	}
	return os.Remove(probe)
}
