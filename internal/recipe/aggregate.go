package recipe

import "github.com/shopspring/decimal"

// Summary is the cost and margin spread across a set of variant metrics.
type Summary struct {
	MinCost   decimal.Decimal
	MaxCost   decimal.Decimal
	MinMargin int64
	MaxMargin int64
}

// Aggregate reduces metrics to their min/max cost and margin. An empty slice
// yields the zero summary.
func Aggregate(metrics []VariantMetric) Summary {
	if len(metrics) == 0 {
		return Summary{MinCost: decimal.Zero, MaxCost: decimal.Zero}
	}

	summary := Summary{
		MinCost:   metrics[0].Cost,
		MaxCost:   metrics[0].Cost,
		MinMargin: metrics[0].Margin,
		MaxMargin: metrics[0].Margin,
	}
	for _, metric := range metrics[1:] {
		if metric.Cost.LessThan(summary.MinCost) {
			summary.MinCost = metric.Cost
		}
		if metric.Cost.GreaterThan(summary.MaxCost) {
			summary.MaxCost = metric.Cost
		}
		if metric.Margin < summary.MinMargin {
			summary.MinMargin = metric.Margin
		}
		if metric.Margin > summary.MaxMargin {
			summary.MaxMargin = metric.Margin
		}
	}
	return summary
}

// CostIsRange reports whether the variants differ in cost.
func (s Summary) CostIsRange() bool {
	return !s.MinCost.Equal(s.MaxCost)
}

// MarginIsRange reports whether the variants differ in margin.
func (s Summary) MarginIsRange() bool {
	return s.MinMargin != s.MaxMargin
}
