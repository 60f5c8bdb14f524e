// Package analysis implements the six fixed aggregations over the loaded
// dataset. Every operation is a pure read; the dataset never changes after
// load, so results are stable across repeated runs.
package analysis

import (
	"context"
	"sort"
	"strings"

	"github.com/gigsight/gigsight/internal/dataset"
)

// Kind identifies one of the six fixed analyses. The set is closed; the
// resolver rejects anything outside it.
type Kind string

const (
	KindCryptoVsOther        Kind = "crypto_vs_other"
	KindEarningsByRegion     Kind = "earnings_by_region"
	KindExpertProjects       Kind = "expert_projects"
	KindEarningsByExperience Kind = "earnings_by_experience"
	KindTopSkills            Kind = "top_skills"
	KindEarningsByEducation  Kind = "earnings_by_education"
)

// DefaultTopN is the number of skills top_skills returns when the caller
// supplies no top_n parameter.
const DefaultTopN = 5

// Params carries optional per-analysis parameters. Only top_skills reads
// TopN; zero or negative falls back to DefaultTopN.
type Params struct {
	TopN int
}

// Result is the tagged output of one analysis run.
type Result struct {
	Kind    Kind `json:"analysis_type"`
	Payload any  `json:"result"`
}

// CryptoComparison compares mean earnings between records whose
// payment_methods mention cryptocurrency and the rest. A nil field means the
// value is undefined: its partition held no record with present earnings, or
// (for DifferencePct) the other-partition mean is zero. Undefined stays
// undefined; it is never rendered as NaN or infinity.
type CryptoComparison struct {
	CryptoEarnings *float64 `json:"crypto_earnings"`
	OtherEarnings  *float64 `json:"other_earnings"`
	DifferencePct  *float64 `json:"difference_percentage"`
}

// ExpertProjects counts expert-tier records and those below 100 completed
// projects. Percentage is 0 when there are no experts, by explicit policy.
type ExpertProjects struct {
	TotalExperts    int     `json:"total_experts"`
	ExpertsUnder100 int     `json:"experts_less_than_100"`
	Percentage      float64 `json:"percentage"`
}

// SkillMean is one skill's mean earnings.
type SkillMean struct {
	Skill        string  `json:"skill"`
	MeanEarnings float64 `json:"mean_earnings"`
}

func cryptoVsOther(ctx context.Context, s *dataset.Store) (CryptoComparison, error) {
	var out CryptoComparison

	crypto, cok, err := s.MeanEarningsWhereContains(ctx, "payment_methods", "cryptocurrency", false)
	if err != nil {
		return out, err
	}
	other, ook, err := s.MeanEarningsWhereContains(ctx, "payment_methods", "cryptocurrency", true)
	if err != nil {
		return out, err
	}

	if cok {
		out.CryptoEarnings = &crypto
	}
	if ook {
		out.OtherEarnings = &other
	}
	if cok && ook && other != 0 {
		diff := (crypto - other) / other * 100
		out.DifferencePct = &diff
	}
	return out, nil
}

func expertProjects(ctx context.Context, s *dataset.Store) (ExpertProjects, error) {
	total, under, err := s.ExpertProjectCounts(ctx, "expert", 100)
	if err != nil {
		return ExpertProjects{}, err
	}
	out := ExpertProjects{TotalExperts: total, ExpertsUnder100: under}
	if total > 0 {
		out.Percentage = float64(under) / float64(total) * 100
	}
	return out, nil
}

// topSkills tokenizes every record's skills cell (split on comma, trim, drop
// empties) and computes, per skill, the mean earnings over all records whose
// skill list contains that skill. A record contributes its earnings at most
// once per skill, however often the token repeats. Returns at most topN
// entries, sorted descending by mean earnings. An absent skills column
// yields an empty result rather than an error.
func topSkills(ctx context.Context, s *dataset.Store, topN int) ([]SkillMean, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if !s.HasColumn("skills") {
		return []SkillMean{}, nil
	}

	rows, err := s.SkillEarningsRows(ctx)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, row := range rows {
		seen := make(map[string]bool)
		for _, tok := range strings.Split(row.Skills, ",") {
			skill := strings.TrimSpace(tok)
			if skill == "" || seen[skill] {
				continue
			}
			seen[skill] = true
			sums[skill] += row.Earnings
			counts[skill]++
		}
	}

	out := make([]SkillMean, 0, len(sums))
	for skill, sum := range sums {
		out = append(out, SkillMean{Skill: skill, MeanEarnings: sum / float64(counts[skill])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanEarnings != out[j].MeanEarnings {
			return out[i].MeanEarnings > out[j].MeanEarnings
		}
		return out[i].Skill < out[j].Skill
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}
