package output

import (
	"bytes"
	"encoding/json"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Packages []PackageInfo `json:"packages"`
	Stats    jsonStats     `json:"stats"`
	Meta     jsonMeta      `json:"meta"`
}

// jsonStats represents manifest statistics in JSON output.
type jsonStats struct {
	Packages int `json:"packages"`
	Versions int `json:"versions"`
	Modules  int `json:"modules"`
	Commands int `json:"commands"`
}

// jsonMeta represents metadata in JSON output.
type jsonMeta struct {
	Location string   `json:"location"`
	Elapsed  string   `json:"elapsed,omitempty"`
	Cached   bool     `json:"cached"`
	Warnings []string `json:"warnings,omitempty"`
}

// JSONFormatter formats output as a single indented JSON object.
// It produces a complete JSON document with packages, stats, and meta
// sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Report) error {
	doc := jsonOutput{
		Packages: r.Packages,
		Stats: jsonStats{
			Packages: r.Stats.Packages,
			Versions: r.Stats.Versions,
			Modules:  r.Stats.Modules,
			Commands: r.Stats.Commands,
		},
		Meta: jsonMeta{
			Location: r.Location,
			Cached:   r.Cached,
			Warnings: r.Warnings,
		},
	}
	if r.Elapsed > 0 {
		doc.Meta.Elapsed = r.Elapsed.String()
	}
	if doc.Packages == nil {
		doc.Packages = []PackageInfo{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
