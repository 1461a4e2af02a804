// Package paths locates data files and expands command line inputs into
// lists of DC6 files.
package paths

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Ext is the extension of DC6 files, matched case-insensitively.
const Ext = ".dc6"

func possibleDirs() []string {
	dirs := []string{".", "datafiles"}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe), filepath.Join(filepath.Dir(exe), "datafiles"))
	}
	return dirs
}

// Find locates the passed data file name and returns a path to it, or an
// empty string if it is nowhere to be found.
//
// For example, for "units.pal" it may return "datafiles/units.pal".
func Find(fileName string) string {
	for _, dir := range possibleDirs() {
		path := filepath.Join(dir, fileName)
		if f, err := os.Open(path); err == nil {
			f.Close()
			glog.V(1).Infof("paths.Find(%q)=%s", fileName, path)
			return path
		}
	}
	return ""
}

// Expand turns command line arguments into a list of files. Directories are
// replaced by the DC6 files directly inside them, in name order; any other
// argument is kept as it is, even if it doesn't exist, so that opening it
// fails for that file alone. Only a directory that can't be listed is an
// error.
func Expand(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil || !st.IsDir() {
			files = append(files, arg)
			continue
		}
		inDir, err := ListDir(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, inDir...)
	}
	return files, nil
}

// ListDir returns the DC6 files directly inside dir, in name order.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %q", dir)
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	glog.V(1).Infof("files in dir %s: %v", dir, files)
	return files, nil
}
