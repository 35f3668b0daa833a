// Package score computes the weighted go-live readiness score from the
// four CRM go-live tests and buckets it into readiness tiers.
package score

import (
	"github.com/Gautam1401/config-operations-hub/internal/domain"
	"github.com/Gautam1401/config-operations-hub/internal/normalize"
)

// Test weights. Deductions reflect go-live impact: a failed Sample ADF
// or Data Migration run blocks the launch, the email tests degrade it.
const (
	WeightSampleADF     = 40.0
	WeightInboundEmail  = 12.5
	WeightOutboundEmail = 12.5
	WeightDataMigration = 35.0
)

var testWeights = []struct {
	Field  domain.FieldKey
	Weight float64
}{
	{domain.FieldSampleADF, WeightSampleADF},
	{domain.FieldInboundEmail, WeightInboundEmail},
	{domain.FieldOutboundEmail, WeightOutboundEmail},
	{domain.FieldDataMigration, WeightDataMigration},
}

// Result is one record's readiness score.
type Result struct {
	Score float64          `json:"score"`
	Tier  domain.ScoreTier `json:"tier"`

	// Deductions names the tests that cost points, keyed by canonical
	// field name.
	Deductions map[domain.FieldKey]float64 `json:"deductions,omitempty"`
}

// Compute derives the readiness score for one record: start from 100
// and deduct the weight of every test not answered "Yes" or "No
// Issues". Blank and Unable to Test cells deduct too; an unverified
// test cannot count toward readiness.
func Compute(rec *domain.Record) Result {
	res := Result{Score: 100}

	for _, tw := range testWeights {
		if v := rec.Field(tw.Field); v == normalize.TestYes || v == normalize.TestNoIssues {
			continue
		}
		if res.Deductions == nil {
			res.Deductions = make(map[domain.FieldKey]float64)
		}
		res.Deductions[tw.Field] = tw.Weight
		res.Score -= tw.Weight
	}

	res.Tier = TierFor(res.Score)
	return res
}

// TierFor buckets a 0-100 score. Boundaries are inclusive on the lower
// edge: exactly 90 is Excellent, exactly 60 is Needs Improvement.
func TierFor(score float64) domain.ScoreTier {
	switch {
	case score >= 90:
		return domain.TierExcellent
	case score >= 75:
		return domain.TierGood
	case score >= 60:
		return domain.TierNeedsImprovement
	default:
		return domain.TierCritical
	}
}
