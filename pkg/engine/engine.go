// Package engine 实现分析流水线：解析问题后按单地区 / 多地区
// 两条固定路径取数、计算并生成结构化报告。
// 每次请求独享一个 ExecutionContext，任一阶段失败整条流水线中止。
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/econ_radar/pkg/analysis"
	"github.com/iWorld-y/econ_radar/pkg/llm"
	"github.com/iWorld-y/econ_radar/pkg/logger"
	dm "github.com/iWorld-y/econ_radar/pkg/model"
	"github.com/iWorld-y/econ_radar/pkg/query"
)

// DataNotFoundError 取数阶段查询结果为空
type DataNotFoundError struct {
	Regions   []string
	Year      int
	Indicator string
}

func (e *DataNotFoundError) Error() string {
	return fmt.Sprintf("未查询到数据: 地区=%s 年份=%d 指标=%s",
		strings.Join(e.Regions, ","), e.Year, e.Indicator)
}

// 流水线阶段名
const (
	StageParse         = "parse"
	StageFetchCurrent  = "fetch_current"
	StageFetchPrevious = "fetch_previous"
	StageComputeGrowth = "compute_growth"
	StageBuildSingle   = "build_single_report"
	StageFetchMulti    = "fetch_multi"
	StageBuildMulti    = "build_multi_report"
)

// PipelineError 包装任一阶段的失败，带上阶段名回给调用方
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline aborted at stage %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// DataAccessor 数据集查询能力，由 dataset.Dataset 实现
type DataAccessor interface {
	QueryPoint(region string, year int, indicators []string) ([]dm.RegionalDataPoint, error)
	QueryMulti(regions []string, year int, indicators []string) ([]dm.RegionalDataPoint, error)
}

// ExecutionContext 单次请求的流水线上下文，各阶段逐步填充
type ExecutionContext struct {
	Question string
	Parsed   *dm.ParsedQuery

	// 单地区路径
	Current  *dm.RegionalDataPoint
	Previous *dm.RegionalDataPoint
	Growth   float64
	Trend    string

	// 多地区路径
	MultiData []dm.RegionalDataPoint

	Result *dm.AnalysisResult
}

// Engine 流水线引擎
type Engine struct {
	parser    *query.Parser
	data      DataAccessor
	chatModel model.ChatModel
	limiter   *rate.Limiter
}

// New 创建引擎实例
func New(parser *query.Parser, data DataAccessor, chatModel model.ChatModel, limiter *rate.Limiter) *Engine {
	return &Engine{
		parser:    parser,
		data:      data,
		chatModel: chatModel,
		limiter:   limiter,
	}
}

// stage 流水线中的一个阶段
type stage struct {
	name string
	run  func(context.Context, *ExecutionContext) error
}

// route 按解析结果选择执行路径，这是流水线里唯一的分支点
func (e *Engine) route(p *dm.ParsedQuery) []stage {
	if p.IsMultiRegion {
		return []stage{
			{StageFetchMulti, e.fetchMulti},
			{StageBuildMulti, e.buildMultiReport},
		}
	}
	return []stage{
		{StageFetchCurrent, e.fetchCurrent},
		{StageFetchPrevious, e.fetchPrevious},
		{StageComputeGrowth, e.computeGrowth},
		{StageBuildSingle, e.buildSingleReport},
	}
}

// Analyze 执行一次完整分析。阶段严格串行，任一失败即整体中止，
// 不存在部分结果兜底；重试属于模型调用层，不在这里做。
func (e *Engine) Analyze(ctx context.Context, question string) (*dm.AnalysisResult, error) {
	ec := &ExecutionContext{Question: question}

	if err := e.parse(ctx, ec); err != nil {
		return nil, &PipelineError{Stage: StageParse, Err: err}
	}
	logger.Log.Infof("问题解析完成: regions=%v indicator=%s years=%d/%d multi=%v",
		ec.Parsed.Regions, ec.Parsed.Indicator, ec.Parsed.YearCurrent, ec.Parsed.YearPrevious, ec.Parsed.IsMultiRegion)

	for _, s := range e.route(ec.Parsed) {
		if err := s.run(ctx, ec); err != nil {
			return nil, &PipelineError{Stage: s.name, Err: err}
		}
		logger.Log.Debugf("阶段 [%s] 完成", s.name)
	}

	return ec.Result, nil
}

func (e *Engine) parse(_ context.Context, ec *ExecutionContext) error {
	parsed, err := e.parser.Parse(ec.Question)
	if err != nil {
		return err
	}
	ec.Parsed = parsed
	return nil
}

func (e *Engine) fetchCurrent(_ context.Context, ec *ExecutionContext) error {
	p := ec.Parsed
	row, err := e.fetchOne(p.Regions[0], p.YearCurrent, p.Indicator)
	if err != nil {
		return err
	}
	ec.Current = row
	return nil
}

func (e *Engine) fetchPrevious(_ context.Context, ec *ExecutionContext) error {
	p := ec.Parsed
	row, err := e.fetchOne(p.Regions[0], p.YearPrevious, p.Indicator)
	if err != nil {
		return err
	}
	ec.Previous = row
	return nil
}

func (e *Engine) fetchOne(region string, year int, indicator string) (*dm.RegionalDataPoint, error) {
	rows, err := e.data.QueryPoint(region, year, []string{indicator})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &DataNotFoundError{Regions: []string{region}, Year: year, Indicator: indicator}
	}
	return &rows[0], nil
}

func (e *Engine) computeGrowth(_ context.Context, ec *ExecutionContext) error {
	g, err := analysis.GrowthRate(ec.Current.Value, ec.Previous.Value)
	if err != nil {
		return err
	}
	ec.Growth = g
	ec.Trend = analysis.ClassifyTrend(g)
	return nil
}

func (e *Engine) buildSingleReport(ctx context.Context, ec *ExecutionContext) error {
	report, err := llm.Complete[dm.EconomicReport](ctx, e.chatModel, e.limiter,
		singleReportSystemPrompt, buildSingleUserPrompt(ec))
	if err != nil {
		return err
	}

	sanitizeWeaknesses(report)

	ec.Result = &dm.AnalysisResult{Kind: dm.KindSingleRegion, Single: report}
	return nil
}

// 短板条目上限
const maxWeaknessFindings = 5

// sanitizeWeaknesses 约束模型产出的短板列表：空值补齐、截断、校验严重程度
func sanitizeWeaknesses(report *dm.EconomicReport) {
	if report.WeaknessAnalysis == nil {
		report.WeaknessAnalysis = []dm.WeaknessFinding{}
	}
	if len(report.WeaknessAnalysis) > maxWeaknessFindings {
		report.WeaknessAnalysis = report.WeaknessAnalysis[:maxWeaknessFindings]
	}
	for i := range report.WeaknessAnalysis {
		if !dm.ValidSeverity(report.WeaknessAnalysis[i].Severity) {
			logger.Log.Warnf("模型返回了未知严重程度 %q，归为 %s",
				report.WeaknessAnalysis[i].Severity, dm.SeverityModerate)
			report.WeaknessAnalysis[i].Severity = dm.SeverityModerate
		}
	}
}

func (e *Engine) fetchMulti(_ context.Context, ec *ExecutionContext) error {
	p := ec.Parsed
	// 多地区只取本期数据，跨年增长率不在对比路径内计算
	rows, err := e.data.QueryMulti(p.Regions, p.YearCurrent, []string{p.Indicator})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return &DataNotFoundError{Regions: p.Regions, Year: p.YearCurrent, Indicator: p.Indicator}
	}
	ec.MultiData = rows
	return nil
}

func (e *Engine) buildMultiReport(ctx context.Context, ec *ExecutionContext) error {
	report, err := llm.Complete[dm.MultiRegionReport](ctx, e.chatModel, e.limiter,
		multiReportSystemPrompt, buildMultiUserPrompt(ec))
	if err != nil {
		return err
	}

	// 确定性字段不交给模型：无论模型返回什么都以本地计算结果为准
	p := ec.Parsed
	report.Regions = p.Regions
	report.Indicator = p.Indicator
	report.Year = p.YearCurrent
	report.Ranking = buildRanking(ec.MultiData)

	ec.Result = &dm.AnalysisResult{Kind: dm.KindMultiRegion, Multi: report}
	return nil
}

// buildRanking 按指标值降序排名，同值保持取数顺序
func buildRanking(rows []dm.RegionalDataPoint) []dm.RankingEntry {
	sorted := make([]dm.RegionalDataPoint, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	ranking := make([]dm.RankingEntry, len(sorted))
	for i, r := range sorted {
		ranking[i] = dm.RankingEntry{Rank: i + 1, Region: r.Region, Value: r.Value}
	}
	return ranking
}
