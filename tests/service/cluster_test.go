package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/service"
)

func TestComputeSubtotal(t *testing.T) {
	lines := []domain.CostLine{
		{Qty: 4, UnitCost: ptr(25.0)},
		{Qty: 2, UnitCost: ptr(50.0)},
		{Qty: 10, UnitCost: nil}, // unknown cost contributes zero
	}

	assert.InDelta(t, 200.0, service.ComputeSubtotal(lines), 1e-9)
	assert.InDelta(t, 0.0, service.ComputeSubtotal(nil), 1e-9)
}

func TestComputeMarkupBase_ExcludesFlaggedLines(t *testing.T) {
	lines := []domain.CostLine{
		{Qty: 4, UnitCost: ptr(25.0), IncludeInMarkup: true},
		{Qty: 2, UnitCost: ptr(50.0), IncludeInMarkup: false},
		{Qty: 1, UnitCost: nil, IncludeInMarkup: true},
	}

	// Only the first line participates
	assert.InDelta(t, 100.0, service.ComputeMarkupBase(lines), 1e-9)
}

func TestComputeMarkupAmount(t *testing.T) {
	assert.InDelta(t, 20.0, service.ComputeMarkupAmount(100, domain.MarkupTypePercentage, 20), 1e-9)
	assert.InDelta(t, 0.0, service.ComputeMarkupAmount(100, domain.MarkupTypePercentage, 0), 1e-9)
	assert.InDelta(t, 75.0, service.ComputeMarkupAmount(100, domain.MarkupTypeFixed, 75), 1e-9)
	// Fixed markup ignores the base entirely
	assert.InDelta(t, 75.0, service.ComputeMarkupAmount(0, domain.MarkupTypeFixed, 75), 1e-9)
}

func TestComputeTotals(t *testing.T) {
	cluster := &domain.CostCluster{
		MarkupType:  domain.MarkupTypePercentage,
		MarkupValue: 10,
		Lines: []domain.CostLine{
			{Qty: 2, UnitCost: ptr(100.0), IncludeInMarkup: true},
			{Qty: 1, UnitCost: ptr(50.0), IncludeInMarkup: false},
			{Qty: 3, UnitCost: nil, IncludeInMarkup: true},
		},
	}

	totals := service.ComputeTotals(cluster)

	// Subtotal covers all priced lines, markup base only the flagged ones
	assert.InDelta(t, 250.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 20.0, totals.MarkupAmount, 1e-9)
	assert.InDelta(t, 270.0, totals.Total, 1e-9)
	assert.Equal(t, 1, totals.UnknownCosts)
}

func TestComputeTotals_FixedMarkup(t *testing.T) {
	cluster := &domain.CostCluster{
		MarkupType:  domain.MarkupTypeFixed,
		MarkupValue: 500,
		Lines: []domain.CostLine{
			{Qty: 1, UnitCost: ptr(100.0), IncludeInMarkup: true},
		},
	}

	totals := service.ComputeTotals(cluster)
	assert.InDelta(t, 100.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 500.0, totals.MarkupAmount, 1e-9)
	assert.InDelta(t, 600.0, totals.Total, 1e-9)
}

func TestComputeTotals_EmptyCluster(t *testing.T) {
	cluster := &domain.CostCluster{
		MarkupType:  domain.MarkupTypePercentage,
		MarkupValue: 20,
	}

	totals := service.ComputeTotals(cluster)
	assert.InDelta(t, 0.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 0.0, totals.MarkupAmount, 1e-9)
	assert.InDelta(t, 0.0, totals.Total, 1e-9)
	assert.Equal(t, 0, totals.UnknownCosts)
}

func TestRoundPrice(t *testing.T) {
	assert.InDelta(t, 252.0, service.RoundPrice(252.0), 1e-9)
	assert.InDelta(t, 123.46, service.RoundPrice(123.456), 1e-9)
	assert.InDelta(t, 10.55, service.RoundPrice(10.554), 1e-9)
	assert.InDelta(t, 0.0, service.RoundPrice(0), 1e-9)
	assert.InDelta(t, -2.34, service.RoundPrice(-2.341), 1e-9)
}
