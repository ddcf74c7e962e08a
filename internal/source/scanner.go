package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir discovers import files under path. A path naming a single file is
// returned as-is; a missing path yields no files and no error.
func ScanDir(path string) ([]DiscoveredFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return []DiscoveredFile{discovered(path, info)}, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isImportFile(d.Name()) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished mid-walk
		}
		files = append(files, discovered(p, fi))
		return nil
	})

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, err
}

func discovered(path string, info os.FileInfo) DiscoveredFile {
	name := filepath.Base(path)
	return DiscoveredFile{
		Path:      path,
		Name:      strings.TrimSuffix(name, filepath.Ext(name)),
		MtimeNs:   info.ModTime().UnixNano(),
		SizeBytes: info.Size(),
	}
}

func isImportFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".jsonl" || ext == ".ndjson"
}
