// Package employees reads sample employee records from a directory of JSON
// files. The file name (minus extension) is the employee key.
package employees

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"onboarding-backend/internal/shared/util"
)

// ErrNotFound signals that no record exists for a key.
var ErrNotFound = errors.New("employee not found")

// Employee is a directory listing entry.
type Employee struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Store reads employee JSON files from one directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// List returns all employees sorted by key. A missing directory is an empty
// list, not an error.
func (s *Store) List() ([]Employee, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Employee{}, nil
		}
		return nil, fmt.Errorf("list employees: %w", err)
	}

	out := make([]Employee, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		key := e.Name()[:len(e.Name())-len(".json")]
		out = append(out, Employee{Key: key, Name: util.DisplayName(key)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Get loads one employee record as a generic JSON object.
func (s *Store) Get(key string) (map[string]any, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == ".." {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, key+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read employee %s: %w", key, err)
	}

	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse employee %s: %w", key, err)
	}
	return record, nil
}

// Flatten converts a nested record into dotted scalar keys, the shape the
// document-generation API expects for documentValues. Arrays are treated as
// scalars.
func Flatten(record map[string]any) map[string]string {
	out := make(map[string]string)
	flattenInto(record, "", out)
	return out
}

func flattenInto(record map[string]any, prefix string, out map[string]string) {
	for k, v := range record {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flattenInto(val, key, out)
		case []any:
			parts := make([]string, len(val))
			for i, item := range val {
				parts[i] = fmt.Sprint(item)
			}
			out[key] = strings.Join(parts, ",")
		default:
			out[key] = fmt.Sprint(v)
		}
	}
}
