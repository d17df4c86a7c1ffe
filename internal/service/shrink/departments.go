package shrink

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DefaultDepartment seeds a fresh deployment that ships no department file.
const DefaultDepartment = "GENERAL"

// LoadDepartments reads the configured department-name list from a JSON
// array file. A missing or empty file is seeded with the default list and
// written back so the deployment always has at least one list to record to.
func LoadDepartments(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read departments file %s: %w", path, err)
	}

	var names []string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &names); err != nil {
			return nil, fmt.Errorf("parse departments file %s: %w", path, err)
		}
	}

	if len(names) == 0 {
		names = []string{DefaultDepartment}
		seeded, err := json.MarshalIndent(names, "", "  ")
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, seeded, 0o644); err != nil {
			return nil, fmt.Errorf("seed departments file %s: %w", path, err)
		}
	}

	return names, nil
}
