package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"wlrecon/pkg/contracts/domain"
)

// FileInfo describes a discovered input file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// RoleSet maps each role to its input file path
type RoleSet map[domain.Role]string

// Missing returns the required roles without a file
func (rs RoleSet) Missing() []domain.Role {
	var missing []domain.Role
	for _, r := range domain.RequiredRoles {
		if _, ok := rs[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

// FindInputs lists loadable spreadsheets in dir, oldest first. Office lock
// files (~$name.xlsx) are skipped.
func FindInputs(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") || !IsSupported(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// AssignRoles detects the role of each path from its file name. Two files
// claiming the same role is an error; unrecognised files are returned.
func AssignRoles(paths []string) (RoleSet, []string, error) {
	roles := make(RoleSet, len(paths))
	var unknown []string
	for _, p := range paths {
		role, ok := domain.DetectRole(filepath.Base(p))
		if !ok {
			unknown = append(unknown, p)
			continue
		}
		if prev, dup := roles[role]; dup {
			return nil, unknown, fmt.Errorf("files %s and %s both look like %s", filepath.Base(prev), filepath.Base(p), role)
		}
		roles[role] = p
	}
	return roles, unknown, nil
}

// DiscoverRoles combines FindInputs and AssignRoles for a directory.
func DiscoverRoles(dir string) (RoleSet, error) {
	files, err := FindInputs(dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	roles, _, err := AssignRoles(paths)
	return roles, err
}
