package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

const reportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["summary"],
  "properties": {
    "metadata": {"type": "object"},
    "summary": {
      "type": "object",
      "properties": {
        "files_scanned": {"type": "integer", "minimum": 0},
        "active_violations": {"type": "integer", "minimum": 0},
        "potential_violations": {"type": "integer", "minimum": 0}
      }
    },
    "findings": {
      "type": "array",
      "items": {
        "oneOf": [
          {"type": "string"},
          {"$ref": "#/definitions/finding"}
        ]
      }
    }
  },
  "definitions": {
    "finding": {
      "type": "object",
      "properties": {
        "severity": {"type": "string"},
        "type": {"type": "string"},
        "file": {"type": "string"},
        "line": {"type": "integer", "minimum": 0},
        "code": {"type": "string"},
        "reason": {"type": "string"},
        "remediation": {"type": "string"}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(reportSchema)

var summaryKeys = []string{"files_scanned", "active_violations", "potential_violations"}

// Validate checks a report file. A missing file, malformed JSON, a missing
// summary or a schema violation make the report invalid and the messages
// explain why. Missing summary counts only produce warnings.
func Validate(path string) (bool, []string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, []string{"Report file does not exist"}
		}
		return false, []string{fmt.Sprintf("Failed to read report: %v", err)}
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, []string{fmt.Sprintf("Failed to parse JSON: %v", err)}
	}

	top, ok := doc.(map[string]interface{})
	if !ok {
		return false, []string{"Report must be a JSON object"}
	}
	rawSummary, ok := top["summary"]
	if !ok {
		return false, []string{"Report missing required 'summary' field"}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return false, []string{fmt.Sprintf("Failed to validate report: %v", err)}
	}
	if !result.Valid() {
		var messages []string
		for _, e := range result.Errors() {
			messages = append(messages, e.String())
		}
		return false, messages
	}

	var warnings []string
	summary, _ := rawSummary.(map[string]interface{})
	for _, key := range summaryKeys {
		if _, ok := summary[key]; !ok {
			warnings = append(warnings, fmt.Sprintf("Report missing '%s' in summary", key))
		}
	}
	return true, warnings
}
