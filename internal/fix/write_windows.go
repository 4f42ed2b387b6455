package fix

import "os"

// WriteAtomic writes path in place, keeping its mode; renameio has no
// Windows support.
func WriteAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}
