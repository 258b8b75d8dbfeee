package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/parley-engine/parley/pkg/scenario"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <scenario.json | directory>\n", os.Args[0])
		os.Exit(1)
	}

	target := os.Args[1]
	info, err := os.Stat(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	files := []string{target}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(target, "*.json"))
		if err != nil || len(files) == 0 {
			fmt.Fprintf(os.Stderr, "No scenario files found in %s\n", target)
			os.Exit(1)
		}
	}

	failed := false
	for _, file := range files {
		if err := validateFile(file); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid\n", file)
	}
	if failed {
		os.Exit(1)
	}
}

// Allow 'x.' prefix for experimental scenarios.
var validFilenameRegex = regexp.MustCompile(`^(x\.)?[a-z][a-z0-9_]*[a-z0-9]\.json$|^(x\.)?[a-z]\.json$`)

func validateFile(filename string) error {
	baseName := filepath.Base(filename)
	if !validFilenameRegex.MatchString(baseName) {
		return fmt.Errorf("scenario filename %q must be lowercase snake_case with a .json extension", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var s scenario.Scenario
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&s); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	if err := s.Validate(); err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}
	return nil
}
