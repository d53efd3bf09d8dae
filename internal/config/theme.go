package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/invopop/jsonschema"
)

// SchemaTheme holds the lipgloss styles used to pretty-print `mosaic
// config schema` output. It intentionally covers only what that one
// command needs (unlike the full multi-surface theme a GUI browser
// would carry) — everything else in the repo sources its colors from
// ThemeConfig instead.
type SchemaTheme struct {
	Section lipgloss.Style
	Key     lipgloss.Style
	Type    lipgloss.Style
	Desc    lipgloss.Style
}

// NewSchemaTheme builds a SchemaTheme from the user's ThemeConfig,
// falling back to a plain ANSI palette when FocusBorder is unset.
func NewSchemaTheme(cfg ThemeConfig) SchemaTheme {
	accent := cfg.FocusBorder
	if accent == "" {
		accent = "33"
	}

	return SchemaTheme{
		Section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accent)),
		Key:     lipgloss.NewStyle().Bold(true),
		Type:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true),
		Desc:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}

// RenderSchema reflects cfgType (normally &Config{}) into a JSON schema
// and renders its top-level sections and their properties as a styled,
// human-readable listing for the terminal — the `mosaic config schema`
// command's non-JSON output mode.
func RenderSchema(theme SchemaTheme, cfgType any) string {
	r := new(jsonschema.Reflector)
	schema := r.Reflect(cfgType)

	var b strings.Builder
	if schema.Properties == nil {
		return theme.Desc.Render("no configuration keys found")
	}

	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		section := pair.Key
		sectionSchema := pair.Value

		fmt.Fprintln(&b, theme.Section.Render(strings.ToUpper(section)))
		renderProperties(&b, theme, sectionSchema, "  ")
		fmt.Fprintln(&b)
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderProperties(b *strings.Builder, theme SchemaTheme, s *jsonschema.Schema, indent string) {
	if s == nil || s.Properties == nil {
		return
	}

	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key
		prop := pair.Value

		typ := schemaTypeName(prop)
		line := fmt.Sprintf("%s%s %s", indent, theme.Key.Render(key), theme.Type.Render("("+typ+")"))
		if prop.Description != "" {
			line += "  " + theme.Desc.Render(prop.Description)
		}
		fmt.Fprintln(b, line)
	}
}

func schemaTypeName(s *jsonschema.Schema) string {
	if s == nil {
		return "unknown"
	}
	if s.Type != "" {
		return s.Type
	}
	if s.Ref != "" {
		return "object"
	}
	return "unknown"
}
