// Package templates resolves document templates for the demo steps, either
// from the templates directory or from inline base64 payloads.
package templates

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrTemplateRequired signals that the request named no usable template.
var ErrTemplateRequired = errors.New("templateName or stepKey (mapped) is required when base64FileString is not provided")

// NotFoundError reports a template file that does not exist on disk.
type NotFoundError struct {
	Filename string
}

func (e *NotFoundError) Error() string {
	return "Template not found: " + e.Filename
}

// stepTemplates maps demo step keys to their template files.
var stepTemplates = map[string]string{
	"confidentiality-agreement": "Confidentiality_Agreement_Acknowledgment.docx",
	"handbook-ack":              "Employee_Handbook_Acknowledgment.docx",
	"it-security-policy":        "IT_Security_Policy_Acknowledgment.docx",
}

// ForStep returns the template file mapped to a step key.
func ForStep(stepKey string) (string, bool) {
	name, ok := stepTemplates[stepKey]
	return name, ok
}

// Store reads template files from one directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// ResolveInput selects a template. Precedence: inline base64, explicit
// template name, then the step-key mapping.
type ResolveInput struct {
	StepKey          string
	TemplateName     string
	Base64FileString string
}

// Resolve returns the template bytes and the file name they were resolved
// under.
func (s *Store) Resolve(in ResolveInput) ([]byte, string, error) {
	if in.Base64FileString != "" {
		data, err := base64.StdEncoding.DecodeString(in.Base64FileString)
		if err != nil {
			return nil, "", fmt.Errorf("decode base64FileString: %w", err)
		}
		return data, "template.docx", nil
	}

	filename := in.TemplateName
	if filename == "" && in.StepKey != "" {
		filename, _ = ForStep(in.StepKey)
	}
	if filename == "" {
		return nil, "", ErrTemplateRequired
	}
	if strings.ContainsAny(filename, `/\`) {
		return nil, "", &NotFoundError{Filename: filename}
	}

	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", &NotFoundError{Filename: filename}
		}
		return nil, "", fmt.Errorf("read template %s: %w", filename, err)
	}
	return data, filename, nil
}
