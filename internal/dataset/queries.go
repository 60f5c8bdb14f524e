package dataset

import (
	"context"
	"database/sql"
	"fmt"
)

// CategoryMean is one group's mean earnings.
type CategoryMean struct {
	Category     string  `json:"category"`
	MeanEarnings float64 `json:"mean_earnings"`
}

// ExperienceMean is the mean earnings for one years-of-experience value.
type ExperienceMean struct {
	Years        float64 `json:"years"`
	MeanEarnings float64 `json:"mean_earnings"`
}

// SkillRow is one record's raw skills cell paired with its earnings.
type SkillRow struct {
	Skills   string
	Earnings float64
}

// CategoryMeans groups records by a text column and computes the mean of
// earnings per group. Records with a missing group value are excluded, as
// are earnings-missing records (AVG over present values only). Output is
// ordered by category for deterministic rendering.
func (s *Store) CategoryMeans(ctx context.Context, col string) ([]CategoryMean, error) {
	if err := validColumn(col); err != nil {
		return nil, err
	}
	if err := s.requireColumns(col, "earnings"); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`SELECT %[1]s, AVG(earnings)
		FROM records
		WHERE %[1]s IS NOT NULL AND earnings IS NOT NULL
		GROUP BY %[1]s
		ORDER BY %[1]s`, col)

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryMean
	for rows.Next() {
		var cm CategoryMean
		if err := rows.Scan(&cm.Category, &cm.MeanEarnings); err != nil {
			return nil, err
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

// ExperienceMeans groups by years_of_experience and computes mean earnings
// per group, ordered ascending by the experience value. The ordering is a
// contract: callers render this as a series.
func (s *Store) ExperienceMeans(ctx context.Context) ([]ExperienceMean, error) {
	if err := s.requireColumns("years_of_experience", "earnings"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT years_of_experience, AVG(earnings)
		FROM records
		WHERE years_of_experience IS NOT NULL AND earnings IS NOT NULL
		GROUP BY years_of_experience
		ORDER BY years_of_experience`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExperienceMean
	for rows.Next() {
		var em ExperienceMean
		if err := rows.Scan(&em.Years, &em.MeanEarnings); err != nil {
			return nil, err
		}
		out = append(out, em)
	}
	return out, rows.Err()
}

// MeanEarningsWhereContains computes the mean of earnings over records whose
// column does (negate=false) or does not (negate=true) contain substr,
// case-insensitively. A missing column value is treated as the empty string,
// so it always lands in the non-matching partition. ok is false when the
// partition holds no record with a present earnings value.
func (s *Store) MeanEarningsWhereContains(ctx context.Context, col, substr string, negate bool) (mean float64, ok bool, err error) {
	if err := validColumn(col); err != nil {
		return 0, false, err
	}
	if err := s.requireColumns(col, "earnings"); err != nil {
		return 0, false, err
	}

	op := "> 0"
	if negate {
		op = "= 0"
	}
	q := fmt.Sprintf(`SELECT AVG(earnings)
		FROM records
		WHERE instr(lower(COALESCE(%s, '')), lower(?)) %s`, col, op)

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, q, substr).Scan(&avg); err != nil {
		return 0, false, err
	}
	return avg.Float64, avg.Valid, nil
}

// ExpertProjectCounts returns the number of records whose expertise_level
// contains substr (case-insensitive) and, of those, the number with
// projects_completed below lessThan. A record with a missing
// projects_completed never satisfies the comparison.
func (s *Store) ExpertProjectCounts(ctx context.Context, substr string, lessThan float64) (total, under int, err error) {
	if err := s.requireColumns("expertise_level", "projects_completed"); err != nil {
		return 0, 0, err
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN projects_completed IS NOT NULL AND projects_completed < ? THEN 1 ELSE 0 END), 0)
		FROM records
		WHERE instr(lower(COALESCE(expertise_level, '')), lower(?)) > 0`,
		lessThan, substr).Scan(&total, &under)
	return total, under, err
}

// SkillEarningsRows returns every (skills, earnings) pair with both values
// present, for tokenization by the caller.
func (s *Store) SkillEarningsRows(ctx context.Context) ([]SkillRow, error) {
	if err := s.requireColumns("skills", "earnings"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT skills, earnings
		FROM records
		WHERE skills IS NOT NULL AND earnings IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SkillRow
	for rows.Next() {
		var sr SkillRow
		if err := rows.Scan(&sr.Skills, &sr.Earnings); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// validColumn guards the fmt-interpolated column names. Callers only pass
// compile-time constants, but the check keeps arbitrary identifiers out of
// the SQL text.
func validColumn(col string) error {
	if !knownColumns()[col] {
		return fmt.Errorf("unknown column %q", col)
	}
	return nil
}
