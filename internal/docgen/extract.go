package docgen

import (
	"github.com/tidwall/gjson"
)

// The provider's response shape is not contractually fixed across endpoint
// variants, so extraction scans a fixed, ordered set of candidate field
// names instead of binding to a schema.
const minArtifactLen = 100

var artifactKeys = []string{
	"base64FileString", "FileBase64", "fileBase64", "Base64FileString",
	"document", "documentBase64", "file", "pdfBase64", "content", "data",
	"fileContent", "FileContent", "FileBytes", "pdf", "Pdf", "PDF", "OutputFile",
}

var artifactContainers = []string{"result", "output", "Result", "data"}

// ExtractArtifact pulls the base64-encoded document out of a generate
// response, trying the candidate fields at the top level and then inside the
// known container fields. It returns "" when nothing matches; that is a
// distinct outcome from a transport failure, not an error.
func ExtractArtifact(raw []byte) string {
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return ""
	}
	if s := firstArtifactField(root); s != "" {
		return s
	}
	for _, container := range artifactContainers {
		child := root.Get(container)
		if !child.IsObject() {
			continue
		}
		if s := firstArtifactField(child); s != "" {
			return s
		}
	}
	return ""
}

func firstArtifactField(v gjson.Result) string {
	for _, key := range artifactKeys {
		field := v.Get(key)
		if field.Type == gjson.String && len(field.Str) > minArtifactLen {
			return field.Str
		}
	}
	return ""
}
