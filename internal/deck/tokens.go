// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/casedeck/pkg/types"
)

//go:embed tokens.yaml
var defaultTokensYAML []byte

// Bullet capacity of each narrative block on the template.
const (
	challengeBullets = 3
	solutionBullets  = 4
	impactBullets    = 3
)

// TokenTable maps each logical deck field to the literal {{token}} string
// the template carries for it. Templated entries hold {n} (case position)
// and {x} (bullet position) slots. The table is explicit configuration so a
// retagged template only needs a new YAML file, not a code change.
type TokenTable struct {
	SlideTitle     string `yaml:"slide_title"`
	SlideSubtitle  string `yaml:"slide_subtitle"`
	FourCasesTitle string `yaml:"four_cases_title"`
	SlideNumber    string `yaml:"slide_number"`

	CaseName        string `yaml:"case_name"`
	CaseTitle       string `yaml:"case_title"`
	CaseDescription string `yaml:"case_description"`
	CaseImage       string `yaml:"case_image"`
	CaseLogo        string `yaml:"case_logo"`
	CaseMetric      string `yaml:"case_metric"`
	CaseMetricLabel string `yaml:"case_metric_label"`
	CaseCategory    string `yaml:"case_category"`
	TabLabel        string `yaml:"tab_label"`

	CaseChallenge string `yaml:"case_challenge"`
	CaseSolution  string `yaml:"case_solution"`
	CaseImpact    string `yaml:"case_impact"`

	DetailName          string `yaml:"detail_name"`
	DetailCategory      string `yaml:"detail_category"`
	DetailMetricLabel   string `yaml:"detail_metric_label"`
	DetailChallenge     string `yaml:"detail_challenge"`
	DetailSolutionIntro string `yaml:"detail_solution_intro"`
	DetailSolution      string `yaml:"detail_solution"`
	DetailImpact        string `yaml:"detail_impact"`

	CompanyName        string `yaml:"company_name"`
	CompanyDescription string `yaml:"company_description"`
	GenerationDate     string `yaml:"generation_date"`
}

// DefaultTokenTable returns the table for the stock template.
func DefaultTokenTable() *TokenTable {
	t, err := ParseTokenTable(defaultTokensYAML)
	if err != nil {
		panic("deck: embedded token table is invalid: " + err.Error())
	}
	return t
}

// LoadTokenTable reads a token table override from path; an empty path
// returns the embedded default.
func LoadTokenTable(path string) (*TokenTable, error) {
	if path == "" {
		return DefaultTokenTable(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ConfigError{Reason: fmt.Sprintf("reading token table: %v", err)}
	}
	return ParseTokenTable(raw)
}

// ParseTokenTable decodes and validates a YAML token table.
func ParseTokenTable(raw []byte) (*TokenTable, error) {
	var t TokenTable
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, &types.ConfigError{Reason: fmt.Sprintf("parsing token table: %v", err)}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate rejects empty fields and duplicate expanded token literals. Two
// logical fields resolving to the same literal would make substitution
// order-dependent.
func (t *TokenTable) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"slide_title", t.SlideTitle},
		{"slide_subtitle", t.SlideSubtitle},
		{"four_cases_title", t.FourCasesTitle},
		{"slide_number", t.SlideNumber},
		{"case_name", t.CaseName},
		{"case_title", t.CaseTitle},
		{"case_description", t.CaseDescription},
		{"case_image", t.CaseImage},
		{"case_logo", t.CaseLogo},
		{"case_metric", t.CaseMetric},
		{"case_metric_label", t.CaseMetricLabel},
		{"case_category", t.CaseCategory},
		{"tab_label", t.TabLabel},
		{"case_challenge", t.CaseChallenge},
		{"case_solution", t.CaseSolution},
		{"case_impact", t.CaseImpact},
		{"detail_name", t.DetailName},
		{"detail_category", t.DetailCategory},
		{"detail_metric_label", t.DetailMetricLabel},
		{"detail_challenge", t.DetailChallenge},
		{"detail_solution_intro", t.DetailSolutionIntro},
		{"detail_solution", t.DetailSolution},
		{"detail_impact", t.DetailImpact},
		{"company_name", t.CompanyName},
		{"company_description", t.CompanyDescription},
		{"generation_date", t.GenerationDate},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &types.ConfigError{Reason: "token table: " + f.name + " is empty"}
		}
	}

	seen := make(map[string]bool)
	for _, lit := range t.literals() {
		if seen[lit] {
			return &types.ConfigError{Reason: fmt.Sprintf("token table: literal %q is assigned twice", lit)}
		}
		seen[lit] = true
	}
	return nil
}

// literals expands every templated field over its full index range.
func (t *TokenTable) literals() []string {
	out := []string{
		t.SlideTitle, t.SlideSubtitle, t.FourCasesTitle, t.SlideNumber,
		t.DetailName, t.DetailCategory, t.DetailMetricLabel, t.DetailSolutionIntro,
		t.CompanyName, t.CompanyDescription, t.GenerationDate,
	}
	for n := 1; n <= types.SelectionSize; n++ {
		out = append(out,
			expandN(t.CaseName, n),
			expandN(t.CaseTitle, n),
			expandN(t.CaseDescription, n),
			expandN(t.CaseImage, n),
			expandN(t.CaseLogo, n),
			expandN(t.CaseMetric, n),
			expandN(t.CaseMetricLabel, n),
			expandN(t.CaseCategory, n),
			expandN(t.TabLabel, n),
		)
		for x := 1; x <= challengeBullets; x++ {
			out = append(out, expandNX(t.CaseChallenge, n, x))
		}
		for x := 1; x <= solutionBullets; x++ {
			out = append(out, expandNX(t.CaseSolution, n, x))
		}
		for x := 1; x <= impactBullets; x++ {
			out = append(out, expandNX(t.CaseImpact, n, x))
		}
	}
	for x := 1; x <= challengeBullets; x++ {
		out = append(out, expandX(t.DetailChallenge, x))
	}
	for x := 1; x <= solutionBullets; x++ {
		out = append(out, expandX(t.DetailSolution, x))
	}
	for x := 1; x <= impactBullets; x++ {
		out = append(out, expandX(t.DetailImpact, x))
	}
	return out
}

func expandN(tmpl string, n int) string {
	return strings.ReplaceAll(tmpl, "{n}", strconv.Itoa(n))
}

func expandX(tmpl string, x int) string {
	return strings.ReplaceAll(tmpl, "{x}", strconv.Itoa(x))
}

func expandNX(tmpl string, n, x int) string {
	return expandX(expandN(tmpl, n), x)
}
