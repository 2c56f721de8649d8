// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/casedeck/pkg/types"
)

const (
	maxTitleLength   = 60
	metricLabelWidth = 45
	metricLabelLead  = "     "

	defaultSubtitle      = "Selected Case Studies"
	defaultFourCasesLine = "4 Selected Case Studies"
)

var bulletSplit = regexp.MustCompile(`[.;]\s+`)

// buildPlaceholders assembles the full placeholder map for one generation:
// global company fields, the numbered per-case fields for all four picks,
// and the unnumbered detail fields mirroring the top pick.
func (g *Generator) buildPlaceholders(profile types.CompanyProfile, sel *types.SelectionResult, at time.Time) types.PlaceholderMap {
	tt := g.tokens
	pm := types.PlaceholderMap{}

	pm.SetText(tt.CompanyName, profile.Name)
	pm.SetText(tt.CompanyDescription, profile.Description)
	pm.SetText(tt.GenerationDate, at.Format("2006-01-02"))
	pm.SetText(tt.SlideTitle, "Selected Case Studies — "+profile.Name)
	pm.SetText(tt.SlideSubtitle, defaultSubtitle)
	pm.SetText(tt.FourCasesTitle, defaultFourCasesLine)

	for i, cs := range sel.Cases {
		n := i + 1
		pm.SetText(expandN(tt.CaseName, n), strings.TrimSpace(cs.Organization))
		pm.SetText(expandN(tt.CaseTitle, n), truncateTitle(cs.Title))
		pm.SetText(expandN(tt.CaseDescription, n), strings.TrimSpace(cs.Summary))
		pm.SetText(expandN(tt.CaseCategory, n), displayCategory(cs.Sector))
		pm.SetText(expandN(tt.TabLabel, n), tabLabel(cs.Organization, n))

		value, label := headlineMetric(cs)
		pm.SetText(expandN(tt.CaseMetric, n), value)
		pm.SetText(expandN(tt.CaseMetricLabel, n), padMetricLabel(label))

		setBullets(pm, tt.CaseChallenge, n, splitBullets(cs.Challenge, challengeBullets), challengeBullets)
		setBullets(pm, tt.CaseSolution, n, splitBullets(cs.Solution, solutionBullets), solutionBullets)
		setBullets(pm, tt.CaseImpact, n, splitBullets(cs.Impact, impactBullets), impactBullets)

		logo := g.logoValue(cs)
		pm[expandN(tt.CaseImage, n)] = logo
		pm[expandN(tt.CaseLogo, n)] = logo
	}

	if len(sel.Cases) > 0 {
		g.addDetailFields(pm, sel.Cases[0])
	}
	return pm
}

// addDetailFields fills the single-case slide's unnumbered tokens from the
// most relevant pick.
func (g *Generator) addDetailFields(pm types.PlaceholderMap, cs types.CaseStudy) {
	tt := g.tokens
	pm.SetText(tt.DetailName, strings.TrimSpace(cs.Organization))
	pm.SetText(tt.DetailCategory, displayCategory(cs.Sector))

	_, label := headlineMetric(cs)
	pm.SetText(tt.DetailMetricLabel, padMetricLabel(label))

	solutions := splitBullets(cs.Solution, solutionBullets)
	intro := ""
	if len(solutions) > 0 {
		intro = solutions[0]
	}
	pm.SetText(tt.DetailSolutionIntro, intro)

	setBulletsX(pm, tt.DetailChallenge, splitBullets(cs.Challenge, challengeBullets), challengeBullets)
	setBulletsX(pm, tt.DetailSolution, solutions, solutionBullets)
	setBulletsX(pm, tt.DetailImpact, splitBullets(cs.Impact, impactBullets), impactBullets)
}

// logoValue resolves a case study's logo: the explicit logo reference
// first, then the organization name. Both misses and failed conversions
// yield an empty image value, which blanks the shape.
func (g *Generator) logoValue(cs types.CaseStudy) types.PlaceholderValue {
	if g.logos != nil {
		if cs.LogoRef != "" {
			if data, format, ok := g.logos.Render(cs.LogoRef); ok {
				return types.ImageValue(data, format)
			}
		}
		if data, format, ok := g.logos.Render(cs.Organization); ok {
			return types.ImageValue(data, format)
		}
	}
	return types.ImageValue(nil, "")
}

// headlineMetric picks the case study's first metric, degraded when absent.
func headlineMetric(cs types.CaseStudy) (value, label string) {
	if len(cs.Metrics) == 0 {
		return Degrade(CondMissingMetric).Text, ""
	}
	return formatMetricValue(cs.Metrics[0].Value), cs.Metrics[0].Label
}

// formatMetricValue appends "+" to bare counts ("320", "40K") so they read
// as lower bounds. Figures already carrying a sign, percent, rank marker,
// or suffix pass through unchanged.
func formatMetricValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == "-" || v == "—" {
		return Degrade(CondMissingMetric).Text
	}
	stripped := strings.NewReplacer("K", "", "M", "", ".", "", ",", "").Replace(v)
	if stripped == "" || strings.HasSuffix(v, "+") {
		return v
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return v
		}
	}
	return v + "+"
}

// padMetricLabel left-pads and fixes the width so the metric column of the
// overview slide lines up across all four cards.
func padMetricLabel(label string) string {
	padded := metricLabelLead + label
	if len(padded) < metricLabelWidth {
		padded += strings.Repeat(" ", metricLabelWidth-len(padded))
	}
	return padded
}

// splitBullets breaks a narrative block into at most max sentence-level
// fragments, splitting on sentence or clause boundaries.
func splitBullets(text string, max int) []string {
	var out []string
	for _, part := range bulletSplit.Split(strings.TrimSpace(text), -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == max {
			break
		}
	}
	return out
}

// setBullets writes a case's numbered bullet tokens, padding missing slots
// per the degradation policy.
func setBullets(pm types.PlaceholderMap, tmpl string, n int, bullets []string, slots int) {
	for x := 1; x <= slots; x++ {
		v := Degrade(CondMissingBullet).Text
		if x-1 < len(bullets) {
			v = bullets[x-1]
		}
		pm.SetText(expandNX(tmpl, n, x), v)
	}
}

// setBulletsX is setBullets for the unnumbered detail-slide tokens.
func setBulletsX(pm types.PlaceholderMap, tmpl string, bullets []string, slots int) {
	for x := 1; x <= slots; x++ {
		v := Degrade(CondMissingBullet).Text
		if x-1 < len(bullets) {
			v = bullets[x-1]
		}
		pm.SetText(expandX(tmpl, x), v)
	}
}

// truncateTitle caps engagement headlines at the card's width. The cut is
// on runes so a multibyte title never yields invalid UTF-8.
func truncateTitle(title string) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) <= maxTitleLength {
		return string(runes)
	}
	return string(runes[:maxTitleLength-3]) + "..."
}

// displayCategory renders a sector for the card header, e.g.
// "public-sector" -> "PUBLIC SECTOR".
func displayCategory(s types.Sector) string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "-", " "))
}

// tabLabel is the short navigation label: the organization's first word.
func tabLabel(org string, n int) string {
	fields := strings.Fields(org)
	if len(fields) == 0 {
		return "Case " + strconv.Itoa(n)
	}
	return fields[0]
}
