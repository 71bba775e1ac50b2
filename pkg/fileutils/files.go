package fileutils

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileExists checks if a file exsists
func FileExists(filename string) bool {
	if _, err := os.Stat(filename); err == nil {
		return true
	} else {
		return false
	}
}

// IsDir checks if a file exsists and is a directory
func IsDir(filename string) bool {
	if f, err := os.Stat(filename); (err == nil) && (f.IsDir()) {
		return true
	} else {
		return false
	}
}

// FileNameWithoutExtension returning the filename without the extension
func FileNameWithoutExtension(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// IntFileName parses the base name of a file or folder without extension as integer,
// e.g. tiles/15/25823/16261.png gives 16261
func IntFileName(path string) (int, error) {
	return strconv.Atoi(FileNameWithoutExtension(filepath.Base(path)))
}
