package services

import (
	"sync"
	"testing"

	"reloadradar/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() ([]models.Manufacturer, []models.Product) {
	manufacturers := []models.Manufacturer{
		{ID: 1, Name: "Acme"},
		{ID: 2, Name: "Acme Pro"},
		{ID: 3, Name: "Hodgdon"},
		{ID: 4, Name: ""},
	}
	products := []models.Product{
		{ID: 10, Name: "X100", ManufacturerID: 1},
		{ID: 11, Name: "X100", ManufacturerID: 2},
		{ID: 12, Name: "H4350", ManufacturerID: 3},
		{ID: 13, Name: "Varget", ManufacturerID: 3},
		{ID: 14, Name: "", ManufacturerID: 3},
	}
	return manufacturers, products
}

func TestMatcherPrefersLongestManufacturer(t *testing.T) {
	m := NewMatcher(testCatalog())

	p, ok := m.Match("Acme Pro X100 Powder")
	require.True(t, ok)
	assert.Equal(t, int64(11), p.ID)

	p, ok = m.Match("ACME x100 1lb")
	require.True(t, ok)
	assert.Equal(t, int64(10), p.ID)
}

func TestMatcherOrderOfManufacturersDoesNotMatter(t *testing.T) {
	ms, ps := testCatalog()
	ms[0], ms[1] = ms[1], ms[0]

	p, ok := NewMatcher(ms, ps).Match("Acme Pro X100 Powder")
	require.True(t, ok)
	assert.Equal(t, int64(11), p.ID)
}

func TestMatcherFallsBackToWholeCatalog(t *testing.T) {
	m := NewMatcher(testCatalog())

	p, ok := m.Match("Varget 8lb keg")
	require.True(t, ok)
	assert.Equal(t, int64(13), p.ID)
}

func TestMatcherStaysWithinCandidateManufacturer(t *testing.T) {
	m := NewMatcher(testCatalog())

	// Hodgdon is named but has no X100, so no cross-manufacturer fallback
	_, ok := m.Match("Hodgdon X100")
	assert.False(t, ok)
}

func TestMatcherUnmatched(t *testing.T) {
	m := NewMatcher(testCatalog())

	_, ok := m.Match("Mystery Powder 500g")
	assert.False(t, ok)

	_, ok = m.Manufacturer("Mystery Powder 500g")
	assert.False(t, ok)
}

func TestMatcherConcurrentUse(t *testing.T) {
	m := NewMatcher(testCatalog())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, ok := m.Match("Hodgdon H4350")
			assert.True(t, ok)
			assert.Equal(t, int64(12), p.ID)
		}()
	}
	wg.Wait()
}
