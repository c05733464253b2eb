// Package dataset 负责加载并查询长三角宏观指标数据集。
// 数据源为 parquet 文件，通过 DuckDB 读取；加载时把异构列名归一成
// region/year/indicator/value/unit/source 的长表，之后全部在内存中查询。
package dataset

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/iWorld-y/econ_radar/pkg/logger"
	"github.com/iWorld-y/econ_radar/pkg/model"
)

// SchemaError 数据集列结构无法识别
type SchemaError struct {
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unrecognized dataset schema, columns=%v", e.Columns)
}

// 列名同义词表，大小写敏感匹配
var columnSynonyms = map[string]string{
	"province":  "region",
	"city":      "region",
	"area":      "region",
	"地区":        "region",
	"region":    "region",
	"年份":        "year",
	"year":      "year",
	"指标":        "indicator",
	"metric":    "indicator",
	"indicator": "indicator",
}

// tableShape 归一后的表形态
type tableShape int

const (
	shapeUnknown tableShape = iota
	shapeLong               // 已是长表，value_number 为数值列
	shapeWide               // 宽表，region/year 之外的列都是指标
)

// columnMapping 原始列名到规范角色的映射结果
type columnMapping struct {
	shape     tableShape
	region    string
	year      string
	indicator string
	value     string   // 长表的 value_number 列
	unit      string   // 可选
	source    string   // 可选
	wideCols  []string // 宽表的指标列，保持原始顺序
}

// resolveColumns 根据同义词表判定表形态并定位各角色列
func resolveColumns(cols []string) columnMapping {
	m := columnMapping{}
	var rest []string
	for _, c := range cols {
		switch columnSynonyms[c] {
		case "region":
			if m.region == "" {
				m.region = c
			}
		case "year":
			if m.year == "" {
				m.year = c
			}
		case "indicator":
			if m.indicator == "" {
				m.indicator = c
			}
		default:
			switch c {
			case "value_number":
				m.value = c
			case "unit":
				m.unit = c
			case "source":
				m.source = c
			default:
				rest = append(rest, c)
			}
		}
	}

	if m.region != "" && m.year != "" && m.indicator != "" && m.value != "" {
		m.shape = shapeLong
		return m
	}
	if m.region != "" && m.year != "" {
		m.shape = shapeWide
		// 宽表：除 region/year 外的列全部视为指标列
		m.wideCols = rest
		if m.indicator != "" {
			m.wideCols = append([]string{m.indicator}, m.wideCols...)
		}
		if m.value != "" {
			m.wideCols = append(m.wideCols, m.value)
		}
		if m.unit != "" {
			m.wideCols = append(m.wideCols, m.unit)
		}
		if m.source != "" {
			m.wideCols = append(m.wideCols, m.source)
		}
		return m
	}
	return m
}

// Dataset 进程级只读数据句柄：首次访问时加载一次，之后仅供并发读取
type Dataset struct {
	path string

	once    sync.Once
	loadErr error
	rows    []model.RegionalDataPoint
	regions []string
}

// Open 创建数据句柄，真正的加载推迟到首次查询
func Open(path string) *Dataset {
	return &Dataset{path: path}
}

// newFromRows 直接用现成行构造数据集，跳过文件加载
func newFromRows(rows []model.RegionalDataPoint) *Dataset {
	d := &Dataset{}
	d.once.Do(func() {
		d.rows = rows
		d.regions = distinctRegions(rows)
	})
	return d
}

func distinctRegions(rows []model.RegionalDataPoint) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		if _, ok := seen[r.Region]; ok {
			continue
		}
		seen[r.Region] = struct{}{}
		out = append(out, r.Region)
	}
	return out
}

func (d *Dataset) load() error {
	d.once.Do(func() {
		d.loadErr = d.doLoad()
		if d.loadErr == nil {
			d.regions = distinctRegions(d.rows)
			logger.Log.Infof("数据集加载完成: %d 行, %d 个地区", len(d.rows), len(d.regions))
		}
	})
	return d.loadErr
}

func (d *Dataset) doLoad() error {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	cols, err := describeParquet(db, d.path)
	if err != nil {
		return fmt.Errorf("describe parquet: %w", err)
	}

	m := resolveColumns(cols)
	switch m.shape {
	case shapeLong:
		d.rows, err = loadLong(db, d.path, m)
	case shapeWide:
		d.rows, err = loadWide(db, d.path, m)
	default:
		return &SchemaError{Columns: cols}
	}
	return err
}

func describeParquet(db *sql.DB, path string) ([]string, error) {
	q := fmt.Sprintf(`SELECT column_name FROM (DESCRIBE SELECT * FROM read_parquet(%s))`, quoteLiteral(path))
	rows, err := db.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// loadLong 读取已是长表的数据，年份与数值做 TRY_CAST，失败的行丢弃
func loadLong(db *sql.DB, path string, m columnMapping) ([]model.RegionalDataPoint, error) {
	sel := []string{
		fmt.Sprintf("CAST(%s AS VARCHAR)", quoteIdent(m.region)),
		fmt.Sprintf("TRY_CAST(%s AS INTEGER)", quoteIdent(m.year)),
		fmt.Sprintf("CAST(%s AS VARCHAR)", quoteIdent(m.indicator)),
		fmt.Sprintf("TRY_CAST(%s AS DOUBLE)", quoteIdent(m.value)),
	}
	if m.unit != "" {
		sel = append(sel, fmt.Sprintf("CAST(%s AS VARCHAR)", quoteIdent(m.unit)))
	} else {
		sel = append(sel, "CAST(NULL AS VARCHAR)")
	}
	if m.source != "" {
		sel = append(sel, fmt.Sprintf("CAST(%s AS VARCHAR)", quoteIdent(m.source)))
	} else {
		sel = append(sel, "CAST(NULL AS VARCHAR)")
	}

	q := fmt.Sprintf("SELECT %s FROM read_parquet(%s)", strings.Join(sel, ", "), quoteLiteral(path))
	return scanRows(db, q)
}

// loadWide 把宽表逐指标列转成长表（UNION ALL），unit/source 置空
func loadWide(db *sql.DB, path string, m columnMapping) ([]model.RegionalDataPoint, error) {
	var parts []string
	for _, c := range m.wideCols {
		parts = append(parts, fmt.Sprintf(
			"SELECT CAST(%s AS VARCHAR), TRY_CAST(%s AS INTEGER), %s, TRY_CAST(%s AS DOUBLE), CAST(NULL AS VARCHAR), CAST(NULL AS VARCHAR) FROM read_parquet(%s)",
			quoteIdent(m.region), quoteIdent(m.year), quoteLiteral(c), quoteIdent(c), quoteLiteral(path)))
	}
	if len(parts) == 0 {
		return nil, &SchemaError{Columns: []string{m.region, m.year}}
	}
	return scanRows(db, strings.Join(parts, " UNION ALL "))
}

func scanRows(db *sql.DB, query string) ([]model.RegionalDataPoint, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RegionalDataPoint
	for rows.Next() {
		var region, indicator, unit, source sql.NullString
		var year sql.NullInt64
		var value sql.NullFloat64
		if err := rows.Scan(&region, &year, &indicator, &value, &unit, &source); err != nil {
			return nil, err
		}
		// 关键字段任一为空即丢弃，下游不出现缺失值
		if !region.Valid || !year.Valid || !indicator.Valid || !value.Valid {
			continue
		}
		out = append(out, model.RegionalDataPoint{
			Region:    region.String,
			Year:      int(year.Int64),
			Indicator: indicator.String,
			Value:     value.Float64,
			Unit:      unit.String,
			Source:    source.String,
		})
	}
	return out, rows.Err()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}

// QueryPoint 精确匹配单个地区、单个年份、指标集合内的所有行
func (d *Dataset) QueryPoint(region string, year int, indicators []string) ([]model.RegionalDataPoint, error) {
	if err := d.load(); err != nil {
		return nil, err
	}
	want := indicatorSet(indicators)
	var out []model.RegionalDataPoint
	for _, r := range d.rows {
		if r.Region == region && r.Year == year {
			if _, ok := want[r.Indicator]; ok {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// QueryMulti 同 QueryPoint，但地区按集合成员匹配，用于多地区对比
func (d *Dataset) QueryMulti(regions []string, year int, indicators []string) ([]model.RegionalDataPoint, error) {
	if err := d.load(); err != nil {
		return nil, err
	}
	wantRegion := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		wantRegion[r] = struct{}{}
	}
	want := indicatorSet(indicators)
	var out []model.RegionalDataPoint
	for _, r := range d.rows {
		if _, ok := wantRegion[r.Region]; !ok {
			continue
		}
		if r.Year != year {
			continue
		}
		if _, ok := want[r.Indicator]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Regions 返回去重后的地区名，保持数据集中的出现顺序
func (d *Dataset) Regions() ([]string, error) {
	if err := d.load(); err != nil {
		return nil, err
	}
	return d.regions, nil
}

func indicatorSet(indicators []string) map[string]struct{} {
	s := make(map[string]struct{}, len(indicators))
	for _, i := range indicators {
		s[i] = struct{}{}
	}
	return s
}
