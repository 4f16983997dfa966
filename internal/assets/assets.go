// Package assets embeds the schemas and templates shipped with the
// cratebump binary.
package assets

import (
	"embed"
	"encoding/json"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed embedded_templates
var templates embed.FS

//go:embed embedded_schemas
var schemas embed.FS

func GetTemplatesFS() fs.FS {
	if sub, err := fs.Sub(templates, "embedded_templates"); err == nil {
		return sub
	}
	return templates
}

func GetSchemasFS() fs.FS {
	if sub, err := fs.Sub(schemas, "embedded_schemas"); err == nil {
		return sub
	}
	return schemas
}

// GetTemplate returns embedded template bytes by path relative to the
// templates root (e.g., "config/cratebump.yaml").
func GetTemplate(relPath string) ([]byte, bool) {
	data, err := fs.ReadFile(GetTemplatesFS(), relPath)
	return data, err == nil
}

// GetSchema returns embedded schema bytes by embed path
// (e.g., "embedded_schemas/schemas/config/v1.0.0/cratebump-config.yaml").
func GetSchema(relPath string) ([]byte, bool) {
	data, err := schemas.ReadFile(relPath)
	return data, err == nil
}

// SchemaInfo holds schema metadata.
type SchemaInfo struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Draft string `json:"draft"`
}

// GetSchemaNames returns the available schemas with metadata.
func GetSchemaNames() []SchemaInfo {
	// Directory-based versioned schemas (v1.0.0 is current)
	knownSchemas := map[string]string{
		"cratebump-config-v1.0.0": "embedded_schemas/schemas/config/v1.0.0/cratebump-config.yaml",
	}

	var infos []SchemaInfo
	for name, path := range knownSchemas {
		if _, ok := GetSchema(path); ok {
			infos = append(infos, SchemaInfo{Name: name, Path: path, Draft: detectDraft(path)})
		}
	}
	return infos
}

// detectDraft heuristically detects the draft from the $schema key.
func detectDraft(path string) string {
	data, ok := GetSchema(path)
	if !ok {
		return "Unknown (07/2020-12 supported)"
	}
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		if err := json.Unmarshal(data, &doc); err != nil {
			return "Unknown (07/2020-12 supported)"
		}
	}
	if m, ok := doc.(map[string]interface{}); ok {
		if v, ok := m["$schema"].(string); ok {
			if strings.Contains(v, "draft-07") {
				return "Draft-07"
			}
			if strings.Contains(v, "2020-12") {
				return "Draft-2020-12"
			}
		}
	}
	return "Unknown (07/2020-12 supported)"
}
