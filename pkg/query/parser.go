// Package query 把自然语言问题解析成结构化查询。
// 解析完全基于闭集匹配：指标词表固定，地区候选来自数据集本身，
// 不引入 NLU 模型，正确性依赖数据集地区名的规范性。
package query

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/iWorld-y/econ_radar/pkg/model"
)

// RegionNotFoundError 问题中识别不出任何地区
type RegionNotFoundError struct {
	Question string
}

func (e *RegionNotFoundError) Error() string {
	return "无法从问题中识别地区（region）。请在问题中包含如：安徽/上海/浙江/江苏等。"
}

// RegionSource 提供地区候选词表，由数据集句柄实现
type RegionSource interface {
	Regions() ([]string, error)
}

// Parser 问题解析器
type Parser struct {
	source RegionSource
}

// NewParser 创建解析器，地区候选来自 source
func NewParser(source RegionSource) *Parser {
	return &Parser{source: source}
}

var (
	yearPattern = regexp.MustCompile(`19\d{2}|20\d{2}`)
	// 兜底：抓 "xx省/xx市"
	regionSuffixPattern = regexp.MustCompile(`([\x{4e00}-\x{9fff}]{2,6})(省|市)`)
)

// 多地区对比的触发词
var multiRegionTriggers = []string{"对比", "比较", "江浙沪", "三省", "长三角"}

// normalizeRegionName 标准化地区名称，去除省/市后缀
func normalizeRegionName(name string) string {
	return strings.TrimRight(name, "省市")
}

// regionVariants 生成地区名称变体：带后缀去后缀、不带后缀补两种后缀
func regionVariants(name string) []string {
	if strings.HasSuffix(name, "省") || strings.HasSuffix(name, "市") {
		return []string{name, strings.TrimSuffix(strings.TrimSuffix(name, "省"), "市")}
	}
	return []string{name, name + "省", name + "市"}
}

// Parse 解析问题，依次做指标识别、年份提取、多地区判定、地区匹配。
// 识别不出地区时返回 RegionNotFoundError。
func (p *Parser) Parse(question string) (*model.ParsedQuery, error) {
	indicator := "GDP"
	yearCurrent := 2023
	yearPrevious := 2022
	var foundRegions []string

	// 去空白（包含全角空格情况）
	qNorm := strings.Join(strings.Fields(strings.TrimSpace(question)), "")
	qUpper := strings.ToUpper(qNorm)

	// ---- indicator ----
	// 规则顺序即优先级：后面的命中会覆盖前面的
	if strings.Contains(qUpper, "CPI") || strings.Contains(qNorm, "物价") {
		indicator = "CPI"
	}
	if strings.Contains(qUpper, "GDP") || strings.Contains(qNorm, "生产总值") {
		indicator = "GDP"
	}
	if strings.Contains(qNorm, "三产") || strings.Contains(qNorm, "产业结构") || strings.Contains(qNorm, "三次产业") {
		indicator = "三产结构"
	}

	// ---- years ----
	years := yearPattern.FindAllString(qNorm, -1)
	if len(years) >= 2 {
		yearCurrent, _ = strconv.Atoi(years[0])
		yearPrevious, _ = strconv.Atoi(years[1])
	} else if len(years) == 1 {
		yearCurrent, _ = strconv.Atoi(years[0])
		yearPrevious = yearCurrent - 1
	}

	// ---- 多地区判定 ----
	isMulti := false
	for _, trigger := range multiRegionTriggers {
		if strings.Contains(qNorm, trigger) {
			isMulti = true
			break
		}
	}

	// ---- 地区匹配 ----
	candidates, err := p.candidates()
	if err != nil {
		return nil, err
	}

	if isMulti {
		// 多地区模式：收集所有命中的地区，保持首次命中顺序
		for _, cand := range candidates {
			for _, v := range regionVariants(cand) {
				if v != "" && strings.Contains(qNorm, v) {
					name := normalizeRegionName(cand)
					if !containsString(foundRegions, name) {
						foundRegions = append(foundRegions, name)
					}
					break
				}
			}
		}
	} else {
		// 单地区模式：最长名优先，命中第一个即停
		for _, cand := range candidates {
			for _, v := range regionVariants(cand) {
				if v != "" && strings.Contains(qNorm, v) {
					foundRegions = []string{normalizeRegionName(cand)}
					break
				}
			}
			if len(foundRegions) > 0 {
				break
			}
		}
	}

	// 兜底：抓 "xx省/xx市"
	if len(foundRegions) == 0 {
		for _, match := range regionSuffixPattern.FindAllStringSubmatch(qNorm, -1) {
			name := match[1]
			if !containsString(foundRegions, name) {
				foundRegions = append(foundRegions, name)
			}
		}
	}

	// 江浙沪特殊处理：硬覆盖为三个具体地区
	if strings.Contains(qNorm, "江浙沪") {
		foundRegions = []string{"江苏", "浙江", "上海"}
	}

	if len(foundRegions) == 0 {
		return nil, &RegionNotFoundError{Question: question}
	}

	return &model.ParsedQuery{
		Regions:       foundRegions,
		YearCurrent:   yearCurrent,
		YearPrevious:  yearPrevious,
		Indicator:     indicator,
		IsMultiRegion: len(foundRegions) > 1,
	}, nil
}

// candidates 返回去重后的地区候选，按名称长度降序，长名优先于前缀
func (p *Parser) candidates() ([]string, error) {
	regions, err := p.source.Regions()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(regions))
	var out []string
	for _, r := range regions {
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
