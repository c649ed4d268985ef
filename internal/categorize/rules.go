package categorize

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"upilens/internal/core"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

type (
	// Rule maps an ordered keyword list to one category.
	Rule struct {
		Category string   `yaml:"category"`
		Keywords []string `yaml:"keywords"`
	}

	// Ruleset is the static categorization configuration. Rule order is
	// significant: the first matching rule wins.
	Ruleset struct {
		Rules             []Rule `yaml:"rules"`
		PersonalTransfers bool   `yaml:"personal_transfers"`
		Fallback          string `yaml:"fallback"`
	}
)

// DefaultRuleset returns the embedded rule configuration.
func DefaultRuleset() Ruleset {
	rs, err := parseRuleset(defaultRulesYAML)
	if err != nil {
		// The embedded file ships with the binary; failing to parse it
		// is a build defect, not a runtime condition.
		panic(fmt.Sprintf("embedded rules.yaml: %v", err))
	}
	return rs
}

// LoadRuleset reads a rule configuration from a YAML file.
func LoadRuleset(path string) (Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Ruleset{}, fmt.Errorf("reading rules file: %w", err)
	}
	rs, err := parseRuleset(data)
	if err != nil {
		return Ruleset{}, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	return rs, nil
}

func parseRuleset(data []byte) (Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return Ruleset{}, err
	}
	if err := rs.Validate(); err != nil {
		return Ruleset{}, err
	}
	if rs.Fallback == "" {
		rs.Fallback = core.FallbackCategory
	}
	return rs, nil
}

// Validate rejects empty or duplicate categories and blank keywords.
func (rs Ruleset) Validate() error {
	seen := make(map[string]struct{}, len(rs.Rules))
	for i, r := range rs.Rules {
		if strings.TrimSpace(r.Category) == "" {
			return fmt.Errorf("rule %d: empty category", i+1)
		}
		if _, ok := seen[r.Category]; ok {
			return fmt.Errorf("rule %d: duplicate category %q", i+1, r.Category)
		}
		seen[r.Category] = struct{}{}
		if len(r.Keywords) == 0 {
			return fmt.Errorf("rule %d (%s): no keywords", i+1, r.Category)
		}
		for _, kw := range r.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("rule %d (%s): blank keyword", i+1, r.Category)
			}
		}
	}
	return nil
}

// Categories lists the configured category names in rule order, followed
// by the heuristic and fallback categories.
func (rs Ruleset) Categories() []string {
	out := make([]string, 0, len(rs.Rules)+2)
	for _, r := range rs.Rules {
		out = append(out, r.Category)
	}
	if rs.PersonalTransfers {
		out = append(out, PersonalTransfersCategory)
	}
	out = append(out, rs.Fallback)
	return out
}
