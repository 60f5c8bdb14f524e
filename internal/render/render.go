// Package render turns analysis results into human-readable text. One fixed
// rule per analysis kind: currency with two decimals, percentages with one,
// mapping-shaped results one line per entry in producer order.
package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gigsight/gigsight/internal/analysis"
	"github.com/gigsight/gigsight/internal/dataset"
)

// renderers is the formatting dispatch table, keyed by the same closed set
// of kinds the analysis registry uses.
var renderers = map[analysis.Kind]func(payload any) (string, error){
	analysis.KindCryptoVsOther:        renderCrypto,
	analysis.KindEarningsByRegion:     categoryRenderer("Earnings by Region"),
	analysis.KindExpertProjects:       renderExperts,
	analysis.KindEarningsByExperience: renderExperience,
	analysis.KindTopSkills:            renderSkills,
	analysis.KindEarningsByEducation:  categoryRenderer("Earnings by Education Level"),
}

// Kinds returns the kinds this package can render, in sorted order.
func Kinds() []analysis.Kind {
	kinds := make([]analysis.Kind, 0, len(renderers))
	for k := range renderers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Text renders a result using the rule registered for its kind.
func Text(res analysis.Result) (string, error) {
	r, ok := renderers[res.Kind]
	if !ok {
		return "", fmt.Errorf("no renderer for kind %q", res.Kind)
	}
	return r(res.Payload)
}

// ErrorText renders any engine error as a single diagnostic line. A result
// is never partially rendered alongside an error.
func ErrorText(err error) string {
	return "Error: " + err.Error()
}

func renderCrypto(payload any) (string, error) {
	c, ok := payload.(analysis.CryptoComparison)
	if !ok {
		return "", payloadTypeError(analysis.KindCryptoVsOther, payload)
	}

	var b strings.Builder
	b.WriteString("Crypto vs Other Payment Methods:\n")
	b.WriteString("- Average earnings with cryptocurrency: " + money(c.CryptoEarnings) + "\n")
	b.WriteString("- Average earnings with other methods: " + money(c.OtherEarnings) + "\n")

	switch {
	case c.DifferencePct != nil:
		pct, direction := *c.DifferencePct, "more"
		if pct < 0 {
			pct, direction = -pct, "less"
		}
		b.WriteString(fmt.Sprintf("- Crypto freelancers earn %.1f%% %s", pct, direction))
	case c.CryptoEarnings != nil && c.OtherEarnings != nil && *c.OtherEarnings == 0:
		b.WriteString("- Difference: undefined (other earnings are zero)")
	default:
		b.WriteString("- Difference: undefined")
	}
	return b.String(), nil
}

func renderExperts(payload any) (string, error) {
	e, ok := payload.(analysis.ExpertProjects)
	if !ok {
		return "", payloadTypeError(analysis.KindExpertProjects, payload)
	}
	return fmt.Sprintf("Expert Projects:\n- Total experts: %d\n- Experts with fewer than 100 projects: %d\n- Percentage: %.1f%%",
		e.TotalExperts, e.ExpertsUnder100, e.Percentage), nil
}

func categoryRenderer(title string) func(payload any) (string, error) {
	return func(payload any) (string, error) {
		groups, ok := payload.([]dataset.CategoryMean)
		if !ok {
			return "", fmt.Errorf("%s: unexpected payload %T", title, payload)
		}
		var b strings.Builder
		b.WriteString(title + ":")
		if len(groups) == 0 {
			b.WriteString("\n(no matching records)")
			return b.String(), nil
		}
		for _, g := range groups {
			b.WriteString(fmt.Sprintf("\n- %s: $%.2f", g.Category, g.MeanEarnings))
		}
		return b.String(), nil
	}
}

func renderExperience(payload any) (string, error) {
	series, ok := payload.([]dataset.ExperienceMean)
	if !ok {
		return "", payloadTypeError(analysis.KindEarningsByExperience, payload)
	}
	var b strings.Builder
	b.WriteString("Earnings by Experience:")
	if len(series) == 0 {
		b.WriteString("\n(no matching records)")
		return b.String(), nil
	}
	for _, e := range series {
		years := strconv.FormatFloat(e.Years, 'f', -1, 64)
		b.WriteString(fmt.Sprintf("\n- %s years: $%.2f", years, e.MeanEarnings))
	}
	return b.String(), nil
}

func renderSkills(payload any) (string, error) {
	skills, ok := payload.([]analysis.SkillMean)
	if !ok {
		return "", payloadTypeError(analysis.KindTopSkills, payload)
	}
	var b strings.Builder
	b.WriteString("Top Skills by Earnings:")
	if len(skills) == 0 {
		b.WriteString("\n(no skills data)")
		return b.String(), nil
	}
	for _, s := range skills {
		b.WriteString(fmt.Sprintf("\n- %s: $%.2f", s.Skill, s.MeanEarnings))
	}
	return b.String(), nil
}

func money(v *float64) string {
	if v == nil {
		return "undefined (no records)"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func payloadTypeError(kind analysis.Kind, payload any) error {
	return fmt.Errorf("%s: unexpected payload %T", kind, payload)
}
