// Package fsutil provides file system utilities for the artifacts directory:
// discovery of user-uploaded auxiliary files and the pre-invocation reset
// routine.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files
// ending with the specified extension. It returns a slice of their full
// paths. A missing root yields no files rather than an error, because an
// artifacts directory only exists once something was uploaded into it.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}
	if _, err := os.Stat(rootPath); os.IsNotExist(err) {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}
