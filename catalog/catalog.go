// Package catalog holds the published metadata for the contract rule set:
// trigger code, title and a rendered description for each rule. The API and
// the CLI serve it so contract authors can look up what a trigger means.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed rules.toml
var rulesTOML []byte

// Rule is one entry of the catalog. Description is markdown in the source
// file and sanitized HTML after Load.
type Rule struct {
	Code        string `toml:"code" json:"code"`
	Title       string `toml:"title" json:"title"`
	Description string `toml:"description" json:"description"`
}

type rulesFile struct {
	Rule []Rule
}

// Load decodes the embedded catalog and renders each description. Order is
// the authored file order.
func Load() ([]Rule, error) {
	var file rulesFile
	if err := toml.Unmarshal(rulesTOML, &file); err != nil {
		return nil, fmt.Errorf("decode rule catalog: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rule))
	for _, r := range file.Rule {
		if r.Code == "" {
			return nil, fmt.Errorf("rule catalog entry %q has no code", r.Title)
		}
		desc, err := renderMarkdown(r.Description)
		if err != nil {
			return nil, fmt.Errorf("render description of %s: %w", r.Code, err)
		}
		r.Description = desc
		rules = append(rules, r)
	}

	return rules, nil
}

// renderMarkdown converts markdown content to sanitized HTML.
func renderMarkdown(content string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", err
	}

	p := bluemonday.UGCPolicy()
	return p.Sanitize(buf.String()), nil
}
