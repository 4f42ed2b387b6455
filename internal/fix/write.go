//go:build !windows

package fix

import (
	"path/filepath"

	"github.com/google/renameio/v2"
)

// WriteAtomic replaces path through a temporary file in the same directory,
// keeping the mode of the file it replaces.
func WriteAtomic(path string, data []byte) error {
	return renameio.WriteFile(path, data, 0o644,
		renameio.WithTempDir(filepath.Dir(path)),
		renameio.WithExistingPermissions(),
	)
}
