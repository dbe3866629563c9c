package mlmodel

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// artifactSchemaJSON constrains model artifact files before decoding, so a
// malformed artifact fails with a pointed validation message instead of a
// half-decoded model.
const artifactSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["features", "model"],
  "properties": {
    "competitor": {"type": "string"},
    "features": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 1
    },
    "model": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"enum": ["linear", "tree_ensemble"]},
        "intercept": {"type": "number"},
        "coefficients": {
          "type": "object",
          "additionalProperties": {"type": "number"}
        },
        "base_score": {"type": "number"},
        "trees": {
          "type": "array",
          "items": {"$ref": "#/$defs/node"}
        }
      },
      "allOf": [
        {
          "if": {"properties": {"type": {"const": "linear"}}},
          "then": {"required": ["intercept", "coefficients"]}
        },
        {
          "if": {"properties": {"type": {"const": "tree_ensemble"}}},
          "then": {"required": ["trees"]}
        }
      ]
    }
  },
  "$defs": {
    "node": {
      "type": "object",
      "oneOf": [
        {"required": ["leaf"]},
        {"required": ["feature", "threshold", "left", "right"]}
      ],
      "properties": {
        "leaf": {"type": "number"},
        "feature": {"type": "string"},
        "threshold": {"type": "number"},
        "default": {"enum": ["left", "right"]},
        "left": {"$ref": "#/$defs/node"},
        "right": {"$ref": "#/$defs/node"}
      }
    }
  }
}`

var artifactSchema = jsonschema.MustCompileString("model_artifact.schema.json", artifactSchemaJSON)

// artifact is the decoded form of a model_<competitor>.json file.
type artifact struct {
	Competitor string       `json:"competitor"`
	Features   []string     `json:"features"`
	Model      artifactSpec `json:"model"`
}

type artifactSpec struct {
	Type         string             `json:"type"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
	BaseScore    float64            `json:"base_score"`
	Trees        []*treeNode        `json:"trees"`
}

// LoadArtifact reads, validates, and decodes one model artifact file.
func LoadArtifact(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("model artifact %s: invalid JSON: %w", path, err)
	}
	if err := artifactSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return buildModel(path, &a)
}

func buildModel(path string, a *artifact) (Model, error) {
	known := make(map[string]struct{}, len(a.Features))
	for _, name := range a.Features {
		known[name] = struct{}{}
	}

	switch a.Model.Type {
	case "linear":
		for name := range a.Model.Coefficients {
			if _, ok := known[name]; !ok {
				return nil, fmt.Errorf("model artifact %s: coefficient for unknown feature %q", path, name)
			}
		}
		return NewLinearModel(a.Features, a.Model.Intercept, a.Model.Coefficients), nil
	case "tree_ensemble":
		refs := make(map[string]struct{})
		for _, tree := range a.Model.Trees {
			tree.featureRefs(refs)
		}
		for name := range refs {
			if _, ok := known[name]; !ok {
				return nil, fmt.Errorf("model artifact %s: tree split on unknown feature %q", path, name)
			}
		}
		return newTreeEnsemble(a.Features, a.Model.BaseScore, a.Model.Trees), nil
	default:
		return nil, fmt.Errorf("model artifact %s: unsupported model type %q", path, a.Model.Type)
	}
}
