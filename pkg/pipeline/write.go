package pipeline

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/surveyplot/pkg/chart"
)

// WriteFile replaces path with data. The bytes go to a temporary file in the
// same directory first, so a failed write never leaves a truncated figure.
// Failures are reported as *chart.RenderError with Op "write".
func WriteFile(path string, data []byte) error {
	if err := writeAtomic(path, data); err != nil {
		return &chart.RenderError{Op: "write", Err: err}
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
