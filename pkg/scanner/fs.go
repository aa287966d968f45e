package scanner

import (
	"os"
	"sort"

	"github.com/spf13/afero"
)

// lstat returns metadata without following a final symlink when the
// filesystem supports it. Filesystems without symlinks fall back to Stat.
func lstat(fs afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fs.Stat(path)
}

// readDirNames lists a directory sorted by name.
func readDirNames(fs afero.Fs, dir string) ([]string, error) {
	f, err := fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
