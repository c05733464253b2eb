package analysis

// DivisionByZeroError 对比期数值为 0 时无法计算增长率
type DivisionByZeroError struct{}

func (e *DivisionByZeroError) Error() string {
	return "previous value is 0; cannot compute growth rate"
}

// GrowthRate 计算增长率 (current - previous) / previous。
// previous 为 0 时返回 DivisionByZeroError，绝不产生 Inf/NaN。
func GrowthRate(current, previous float64) (float64, error) {
	if previous == 0 {
		return 0, &DivisionByZeroError{}
	}
	return (current - previous) / previous, nil
}

// 增长趋势标签
const (
	TrendRapid   = "快速增长"
	TrendSteady  = "稳步增长"
	TrendFlat    = "基本持平"
	TrendDecline = "明显下滑"
)

// ClassifyTrend 按固定阈值把增长率归入四档趋势
func ClassifyTrend(rate float64) string {
	switch {
	case rate > 0.05:
		return TrendRapid
	case rate >= 0:
		return TrendSteady
	case rate > -0.05:
		return TrendFlat
	default:
		return TrendDecline
	}
}
