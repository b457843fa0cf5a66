package filex

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMimeType is returned for unknown extensions.
const DefaultMimeType = "application/octet-stream"

var mimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
}

// Extension returns the lower-cased extension of name without the dot, or ""
// when there is none.
func Extension(name string) string {
	ext := filepath.Ext(filepath.Base(name))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// InferMimeType maps a file name or storage key to a media type by extension.
func InferMimeType(name string) string {
	if mt, ok := mimeTypes[Extension(name)]; ok {
		return mt
	}
	return DefaultMimeType
}

// ExpandPaths resolves command-line arguments to regular files. Directories
// are walked recursively, hidden entries inside them are skipped. The result
// keeps argument order; files found in one directory are sorted.
func ExpandPaths(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != arg && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}
