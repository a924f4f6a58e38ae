package cloudinit

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write stores a snippet in dir, creating dir if needed and replacing any
// existing file. It returns the written path.
func Write(dir string, s Snippet) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snippets directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, s.Filename)
	// #nosec G306 - snippets are read by the hypervisor, not secrets
	if err := os.WriteFile(path, []byte(s.Content), 0644); err != nil {
		return "", fmt.Errorf("failed to write snippet %s: %w", path, err)
	}
	return path, nil
}

// WriteAll writes every snippet from All into dir and returns their paths.
// It stops at the first failure.
func WriteAll(dir string) ([]string, error) {
	snippets := All()
	paths := make([]string, 0, len(snippets))
	for _, s := range snippets {
		path, err := Write(dir, s)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
