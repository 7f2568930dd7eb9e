package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/service"
)

func TestToHours(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		unit     domain.TimeUnit
		expected float64
	}{
		{"hours pass through", 1.5, domain.TimeUnitHours, 1.5},
		{"minutes divide by 60", 90, domain.TimeUnitMinutes, 1.5},
		{"seconds divide by 3600", 5400, domain.TimeUnitSeconds, 1.5},
		{"zero", 0, domain.TimeUnitMinutes, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, service.ToHours(tt.value, tt.unit), 1e-9)
		})
	}
}

func TestBuildComponentLines(t *testing.T) {
	clusterID := uuid.New()
	componentID := uuid.New()
	rows := []service.BOMRow{
		{
			ComponentID:   componentID,
			ComponentCode: "STL-100",
			Description:   "Steel beam",
			Quantity:      4,
			UnitCost:      ptr(125.0),
		},
		{
			ComponentID:   uuid.New(),
			ComponentCode: "BLT-20",
			Quantity:      16,
			// no cost known
		},
	}

	lines := service.BuildComponentLines(clusterID, rows, 3, 5)
	require.Len(t, lines, 2)

	// Row quantity multiplies with item quantity
	assert.Equal(t, clusterID, lines[0].ClusterID)
	assert.Equal(t, domain.LineTypeComponent, lines[0].LineType)
	assert.Equal(t, "Steel beam", lines[0].Description)
	assert.InDelta(t, 12.0, lines[0].Qty, 1e-9)
	require.NotNil(t, lines[0].UnitCost)
	assert.InDelta(t, 125.0, *lines[0].UnitCost, 1e-9)
	require.NotNil(t, lines[0].ComponentID)
	assert.Equal(t, componentID, *lines[0].ComponentID)
	assert.True(t, lines[0].IncludeInMarkup)
	assert.Equal(t, 5, lines[0].SortOrder)

	// Missing description falls back to the component code, missing cost stays unknown
	assert.Equal(t, "BLT-20", lines[1].Description)
	assert.InDelta(t, 48.0, lines[1].Qty, 1e-9)
	assert.Nil(t, lines[1].UnitCost)
	assert.Equal(t, 6, lines[1].SortOrder)
}

func TestBuildLaborLines_PieceWork(t *testing.T) {
	clusterID := uuid.New()
	rows := []domain.LaborOperation{
		{
			JobName:   "Welding",
			PayType:   domain.PayTypePiece,
			PieceRate: ptr(5.0),
			Quantity:  6,
		},
	}

	lines := service.BuildLaborLines(clusterID, rows, 1, 0)
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, domain.LineTypeLabor, line.LineType)
	assert.InDelta(t, 6.0, line.Qty, 1e-9)
	require.NotNil(t, line.UnitCost)
	assert.InDelta(t, 5.0, *line.UnitCost, 1e-9)
	require.NotNil(t, line.Rate)
	assert.InDelta(t, 5.0, *line.Rate, 1e-9)
	assert.Nil(t, line.Hours)
	require.NotNil(t, line.LaborType)
	assert.Equal(t, domain.PayTypePiece, *line.LaborType)
}

func TestBuildLaborLines_HourlyWork(t *testing.T) {
	clusterID := uuid.New()
	rows := []domain.LaborOperation{
		{
			JobName:      "Assembly",
			PayType:      domain.PayTypeHourly,
			HourlyRate:   ptr(120.0),
			TimeRequired: 90,
			TimeUnit:     domain.TimeUnitMinutes,
			Quantity:     1,
		},
	}

	lines := service.BuildLaborLines(clusterID, rows, 1, 0)
	require.Len(t, lines, 1)

	line := lines[0]
	// 90 minutes = 1.5 hours
	assert.InDelta(t, 1.5, line.Qty, 1e-9)
	require.NotNil(t, line.Hours)
	assert.InDelta(t, 1.5, *line.Hours, 1e-9)
	require.NotNil(t, line.UnitCost)
	assert.InDelta(t, 120.0, *line.UnitCost, 1e-9)
}

func TestBuildLaborLines_MissingRateIsExplicitZero(t *testing.T) {
	clusterID := uuid.New()
	rows := []domain.LaborOperation{
		{
			JobName:  "Deburring",
			PayType:  domain.PayTypePiece,
			Quantity: 3,
			// no piece rate set
		},
		{
			JobName:      "Inspection",
			PayType:      domain.PayTypeHourly,
			TimeRequired: 30,
			TimeUnit:     domain.TimeUnitMinutes,
			Quantity:     1,
			// no hourly rate set
		},
	}

	lines := service.BuildLaborLines(clusterID, rows, 1, 0)
	require.Len(t, lines, 2)

	for _, line := range lines {
		require.NotNil(t, line.UnitCost)
		assert.InDelta(t, 0.0, *line.UnitCost, 1e-9)
		require.NotNil(t, line.Rate)
		assert.InDelta(t, 0.0, *line.Rate, 1e-9)
	}

	// A zero-rated line is not an unknown cost
	cluster := &domain.CostCluster{MarkupType: domain.MarkupTypePercentage, Lines: lines}
	totals := service.ComputeTotals(cluster)
	assert.InDelta(t, 0.0, totals.Subtotal, 1e-9)
	assert.Equal(t, 0, totals.UnknownCosts)
}

func TestBuildLaborLines_ItemQtyMultiplies(t *testing.T) {
	rows := []domain.LaborOperation{
		{
			JobName:      "Cutting",
			PayType:      domain.PayTypeHourly,
			HourlyRate:   ptr(100.0),
			TimeRequired: 30,
			TimeUnit:     domain.TimeUnitMinutes,
			Quantity:     2,
		},
	}

	lines := service.BuildLaborLines(uuid.New(), rows, 4, 0)
	require.Len(t, lines, 1)

	// 2 ops * 4 items * 0.5h each
	assert.InDelta(t, 4.0, lines[0].Qty, 1e-9)
}

func TestLaborDescription(t *testing.T) {
	withCategory := domain.LaborOperation{JobName: "Welding", CategoryName: "Workshop"}
	assert.Equal(t, "Labour – Workshop · Welding", service.LaborDescription(withCategory))

	withoutCategory := domain.LaborOperation{JobName: "Welding"}
	assert.Equal(t, "Labour – Welding", service.LaborDescription(withoutCategory))

	unnamed := domain.LaborOperation{}
	assert.Contains(t, service.LaborDescription(unnamed), "Job ")
}

// A product with a 6-piece welded part at 5 NOK and 1.5 hours of assembly at
// 120 NOK/h costs 210 before markup, 252 with 20% on top.
func TestProductCostScenario(t *testing.T) {
	clusterID := uuid.New()

	bomLines := service.BuildComponentLines(clusterID, []service.BOMRow{
		{ComponentID: uuid.New(), ComponentCode: "PRT-1", Quantity: 6, UnitCost: ptr(5.0)},
	}, 1, 0)
	laborLines := service.BuildLaborLines(clusterID, []domain.LaborOperation{
		{
			JobName:      "Assembly",
			PayType:      domain.PayTypeHourly,
			HourlyRate:   ptr(120.0),
			TimeRequired: 90,
			TimeUnit:     domain.TimeUnitMinutes,
			Quantity:     1,
		},
	}, 1, len(bomLines))

	cluster := &domain.CostCluster{
		MarkupType:  domain.MarkupTypePercentage,
		MarkupValue: 20,
		Lines:       append(bomLines, laborLines...),
	}

	totals := service.ComputeTotals(cluster)
	assert.InDelta(t, 210.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 42.0, totals.MarkupAmount, 1e-9)
	assert.InDelta(t, 252.0, totals.Total, 1e-9)
	assert.Equal(t, 0, totals.UnknownCosts)
}

func TestFilterRowsByOptions(t *testing.T) {
	rows := []service.BOMRow{
		{ComponentCode: "BASE", Quantity: 1},
		{ComponentCode: "RED", Quantity: 1, OptionGroup: "color", OptionValue: "red"},
		{ComponentCode: "BLUE", Quantity: 1, OptionGroup: "color", OptionValue: "blue"},
	}

	// No selection keeps only unconditional rows
	filtered := service.FilterRowsByOptions(rows, nil)
	require.Len(t, filtered, 1)
	assert.Equal(t, "BASE", filtered[0].ComponentCode)

	// Selecting red keeps the base row and the red row
	filtered = service.FilterRowsByOptions(rows, map[string]string{"color": "red"})
	require.Len(t, filtered, 2)
	assert.Equal(t, "BASE", filtered[0].ComponentCode)
	assert.Equal(t, "RED", filtered[1].ComponentCode)
}

func ptr(v float64) *float64 {
	return &v
}
