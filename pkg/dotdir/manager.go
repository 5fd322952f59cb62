// Package dotdir manages the .skillgate/ and ~/.skillgate directories that
// hold the config file and the local vault and registry data.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the skillgate directory.
	dirName = ".skillgate"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .skillgate/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.skillgate/ dir
//  3. Home ~/.skillgate/ dir
//
// The directory is created if it does not exist.
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating skillgate directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// Join resolves the target directory and joins elem onto it, e.g.
// Join("", "vault") for the default filesystem vault location.
func (m *Manager) Join(overrideDir string, elem ...string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{target}, elem...)...), nil
}

// localDirExists checks whether a .skillgate/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
