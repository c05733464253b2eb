package model

// ParsedQuery 问题解析结果：地区、年份对、指标
type ParsedQuery struct {
	Regions       []string `json:"regions"`         // 地区列表，如 [安徽, 江苏, 上海]
	YearCurrent   int      `json:"year_current"`    // 本期年份，如 2023
	YearPrevious  int      `json:"year_previous"`   // 对比年份，如 2022
	Indicator     string   `json:"indicator"`       // 指标，如 GDP/CPI/三产结构
	IsMultiRegion bool     `json:"is_multi_region"` // 是否为多地区对比分析
}

// RegionalDataPoint 一条宏观指标事实
type RegionalDataPoint struct {
	Region    string  `json:"region"`
	Year      int     `json:"year"`
	Indicator string  `json:"indicator"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit,omitempty"`
	Source    string  `json:"source,omitempty"`
}

// RankingEntry 多地区对比排名项，按指标值降序
type RankingEntry struct {
	Rank   int     `json:"rank"`
	Region string  `json:"region"`
	Value  float64 `json:"value"`
}

// WeaknessFinding 短板分析子项
type WeaknessFinding struct {
	Weakness   string `json:"weakness"`   // 识别出的短板
	Severity   string `json:"severity"`   // 严重程度: 轻微/中等/严重/危急
	Suggestion string `json:"suggestion"` // 改进建议
}

// 短板严重程度枚举
const (
	SeverityMinor    = "轻微"
	SeverityModerate = "中等"
	SeveritySevere   = "严重"
	SeverityCritical = "危急"
)

// ValidSeverity 判断严重程度是否在枚举内
func ValidSeverity(s string) bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeveritySevere, SeverityCritical:
		return true
	}
	return false
}

// EconomicReport 结构化经济分析报告（含短板分析）- 单地区版
type EconomicReport struct {
	Region            string            `json:"region"`
	Indicator         string            `json:"indicator"`
	YearCurrent       int               `json:"year_current"`
	YearPrevious      int               `json:"year_previous"`
	ValueCurrent      float64           `json:"value_current"`
	ValuePrevious     float64           `json:"value_previous"`
	Unit              string            `json:"unit"`
	Source            string            `json:"source"`
	GrowthRatePercent string            `json:"growth_rate_percent"`
	GrowthTrend       string            `json:"growth_trend"`
	WeaknessAnalysis  []WeaknessFinding `json:"short_board_analysis"`
	Conclusion        string            `json:"conclusion"`
}

// MultiRegionReport 多地区对比报告
type MultiRegionReport struct {
	Regions            []string       `json:"regions"`
	Indicator          string         `json:"indicator"`
	Year               int            `json:"year"`
	DataSummary        string         `json:"data_summary"`
	ComparisonAnalysis string         `json:"comparison_analysis"`
	Ranking            []RankingEntry `json:"ranking"`
	Conclusion         string         `json:"conclusion"`
}

// 分析结果类型
const (
	KindSingleRegion = "single_region"
	KindMultiRegion  = "multi_region"
)

// AnalysisResult 一次分析的最终产出，Kind 决定哪个报告字段有效
type AnalysisResult struct {
	Kind   string             `json:"kind"`
	Single *EconomicReport    `json:"single,omitempty"`
	Multi  *MultiRegionReport `json:"multi,omitempty"`
}
