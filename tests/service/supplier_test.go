package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/service"
)

func TestSelectDefaultOffer_PicksCheapest(t *testing.T) {
	offers := []domain.SupplierOffer{
		{SupplierName: "Norsk Stål", Price: ptr(10.0)},
		{SupplierName: "Smith Stål", Price: ptr(7.0)},
		{SupplierName: "BE Group", Price: ptr(12.0)},
	}

	best := service.SelectDefaultOffer(offers)
	require.NotNil(t, best)
	assert.Equal(t, "Smith Stål", best.SupplierName)
}

func TestSelectDefaultOffer_SkipsUnpriced(t *testing.T) {
	offers := []domain.SupplierOffer{
		{SupplierName: "Norsk Stål", Price: nil},
		{SupplierName: "Smith Stål", Price: ptr(9.0)},
	}

	best := service.SelectDefaultOffer(offers)
	require.NotNil(t, best)
	assert.Equal(t, "Smith Stål", best.SupplierName)
}

func TestSelectDefaultOffer_TieResolvesToFirst(t *testing.T) {
	offers := []domain.SupplierOffer{
		{SupplierName: "Norsk Stål", Price: ptr(8.0)},
		{SupplierName: "Smith Stål", Price: ptr(8.0)},
	}

	best := service.SelectDefaultOffer(offers)
	require.NotNil(t, best)
	assert.Equal(t, "Norsk Stål", best.SupplierName)
}

func TestSelectDefaultOffer_AllUnpriced(t *testing.T) {
	offers := []domain.SupplierOffer{
		{SupplierName: "Norsk Stål"},
		{SupplierName: "Smith Stål"},
	}

	assert.Nil(t, service.SelectDefaultOffer(offers))
	assert.Nil(t, service.SelectDefaultOffer(nil))
}

func TestIsLowestOffer(t *testing.T) {
	offers := []domain.SupplierOffer{
		{SupplierName: "Norsk Stål", Price: ptr(10.0)},
		{SupplierName: "Smith Stål", Price: ptr(7.0)},
		{SupplierName: "BE Group", Price: ptr(7.0)},
		{SupplierName: "Unpriced AS"},
	}

	assert.False(t, service.IsLowestOffer(&offers[0], offers))
	// Tied offers are both lowest
	assert.True(t, service.IsLowestOffer(&offers[1], offers))
	assert.True(t, service.IsLowestOffer(&offers[2], offers))
	// Unpriced offers never are
	assert.False(t, service.IsLowestOffer(&offers[3], offers))
	assert.False(t, service.IsLowestOffer(nil, offers))
}
