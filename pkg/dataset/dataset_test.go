package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/econ_radar/pkg/model"
)

func testRows() []model.RegionalDataPoint {
	return []model.RegionalDataPoint{
		{Region: "安徽", Year: 2023, Indicator: "GDP", Value: 47050.6, Unit: "亿元", Source: "统计局"},
		{Region: "安徽", Year: 2022, Indicator: "GDP", Value: 45045.0, Unit: "亿元", Source: "统计局"},
		{Region: "安徽", Year: 2023, Indicator: "CPI", Value: 100.3},
		{Region: "江苏", Year: 2023, Indicator: "GDP", Value: 128222.2, Unit: "亿元"},
		{Region: "浙江", Year: 2023, Indicator: "GDP", Value: 82553.0, Unit: "亿元"},
		{Region: "上海", Year: 2023, Indicator: "GDP", Value: 47218.7, Unit: "亿元"},
	}
}

func TestQueryPointExactMatch(t *testing.T) {
	d := newFromRows(testRows())

	rows, err := d.QueryPoint("安徽", 2023, []string{"GDP"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "安徽", rows[0].Region)
	assert.Equal(t, 2023, rows[0].Year)
	assert.Equal(t, "GDP", rows[0].Indicator)
	assert.Equal(t, 47050.6, rows[0].Value)

	// 指标集合匹配
	rows, err = d.QueryPoint("安徽", 2023, []string{"GDP", "CPI"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// 不做模糊匹配
	rows, err = d.QueryPoint("安徽省", 2023, []string{"GDP"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestQueryMulti(t *testing.T) {
	d := newFromRows(testRows())

	rows, err := d.QueryMulti([]string{"江苏", "浙江", "上海"}, 2023, []string{"GDP"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// 保持数据集内的原始顺序
	assert.Equal(t, "江苏", rows[0].Region)
	assert.Equal(t, "浙江", rows[1].Region)
	assert.Equal(t, "上海", rows[2].Region)
}

func TestRegionsDistinctOrder(t *testing.T) {
	d := newFromRows(testRows())

	regions, err := d.Regions()
	require.NoError(t, err)
	assert.Equal(t, []string{"安徽", "江苏", "浙江", "上海"}, regions)
}

func TestRepeatedAccessIsStable(t *testing.T) {
	d := newFromRows(testRows())

	first, err := d.Regions()
	require.NoError(t, err)
	second, err := d.Regions()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	r1, err := d.QueryPoint("安徽", 2023, []string{"GDP"})
	require.NoError(t, err)
	r2, err := d.QueryPoint("安徽", 2023, []string{"GDP"})
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestResolveColumnsLongShape(t *testing.T) {
	m := resolveColumns([]string{"region", "year", "indicator", "value_number", "unit", "source"})
	assert.Equal(t, shapeLong, m.shape)
	assert.Equal(t, "region", m.region)
	assert.Equal(t, "value_number", m.value)
	assert.Equal(t, "unit", m.unit)
	assert.Equal(t, "source", m.source)
}

func TestResolveColumnsSynonyms(t *testing.T) {
	m := resolveColumns([]string{"province", "年份", "指标", "value_number"})
	assert.Equal(t, shapeLong, m.shape)
	assert.Equal(t, "province", m.region)
	assert.Equal(t, "年份", m.year)
	assert.Equal(t, "指标", m.indicator)

	// 大小写敏感：大写不认
	m = resolveColumns([]string{"Province", "Year", "indicator", "value_number"})
	assert.Equal(t, shapeUnknown, m.shape)
}

func TestResolveColumnsWideShape(t *testing.T) {
	m := resolveColumns([]string{"area", "year", "GDP", "CPI"})
	assert.Equal(t, shapeWide, m.shape)
	assert.Equal(t, []string{"GDP", "CPI"}, m.wideCols)
}

func TestResolveColumnsUnknownShape(t *testing.T) {
	m := resolveColumns([]string{"foo", "bar"})
	assert.Equal(t, shapeUnknown, m.shape)
}

func TestSchemaErrorMessage(t *testing.T) {
	err := &SchemaError{Columns: []string{"foo", "bar"}}
	assert.Contains(t, err.Error(), "foo")
}
