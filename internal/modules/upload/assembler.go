package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func fragmentName(index int) string {
	return fmt.Sprintf("chunk_%d", index)
}

// assemble concatenates fragments 0..total-1 from chunkDir into destPath.
// It writes to a temporary name and renames on full success, so a failure
// at any index never leaves a partial destination visible.
func assemble(chunkDir string, total int, destPath string) error {
	tmpPath := destPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return &AssemblyError{Index: 0, Err: err}
	}

	for i := 0; i < total; i++ {
		if err := appendFragment(out, filepath.Join(chunkDir, fragmentName(i))); err != nil {
			out.Close()
			os.Remove(tmpPath)
			return &AssemblyError{Index: i, Err: err}
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return &AssemblyError{Index: total - 1, Err: err}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return &AssemblyError{Index: total - 1, Err: err}
	}
	return nil
}

func appendFragment(out io.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = io.Copy(out, in)
	return err
}
