// Package project locates the VBA project a scanned directory belongs
// to, adapted from inspector/repository/detector.go's marker-file
// search: walk upward from the scan root for a .vbalint.yaml or a .git
// directory, then derive a display name from the git origin remote or,
// failing that, the root directory's own name.
package project

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Info describes the project containing a scanned path.
type Info struct {
	RootPath string
	Name     string
}

var markers = []string{".vbalint.yaml", ".vbalint.yml", ".git"}

// Detect walks upward from path looking for a project marker, returning
// the directory it was found in and a best-effort project name. If no
// marker is found, RootPath is path itself and Name is its base name.
func Detect(path string) (Info, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Info{}, err
	}

	startDir := absPath
	if info, statErr := os.Stat(absPath); statErr == nil && !info.IsDir() {
		startDir = filepath.Dir(absPath)
	}

	root := findRoot(startDir)
	if root == "" {
		root = startDir
	}

	name := gitOriginName(root)
	if name == "" {
		name = filepath.Base(root)
	}

	return Info{RootPath: root, Name: name}, nil
}

func findRoot(startDir string) string {
	dir := startDir
	for {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func gitOriginName(root string) string {
	configPath := filepath.Join(root, ".git", "config")
	file, err := os.Open(configPath)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	foundRemote := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, `[remote "origin"]`) {
			foundRemote = true
			continue
		}
		if foundRemote && strings.HasPrefix(line, "url = ") {
			url := strings.TrimSuffix(strings.TrimPrefix(line, "url = "), ".git")
			parts := strings.Split(url, "/")
			if len(parts) > 0 {
				return parts[len(parts)-1]
			}
		}
	}
	return ""
}
