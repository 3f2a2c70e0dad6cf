package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type place struct {
	Country string
	Visits  int
	Lat     float64
	Lon     float64
}

func TestCountBy(t *testing.T) {
	places := []place{
		{Country: "FR"}, {Country: "DE"}, {Country: "FR"},
		{Country: "IT"}, {Country: "FR"}, {Country: "DE"},
	}

	records := CountBy(places, func(p place) string { return p.Country })

	assert.Equal(t, []Record{
		{Name: "FR", Value: 3},
		{Name: "DE", Value: 2},
		{Name: "IT", Value: 1},
	}, records)
}

func TestCountBy_TiesSortedByName(t *testing.T) {
	places := []place{
		{Country: "IT"}, {Country: "DE"}, {Country: "FR"},
	}

	records := CountBy(places, func(p place) string { return p.Country })

	assert.Equal(t, []Record{
		{Name: "DE", Value: 1},
		{Name: "FR", Value: 1},
		{Name: "IT", Value: 1},
	}, records)
}

func TestCountBy_Empty(t *testing.T) {
	assert.Empty(t, CountBy(nil, func(p place) string { return p.Country }))
}

func TestSumBy(t *testing.T) {
	places := []place{
		{Country: "FR", Visits: 10},
		{Country: "DE", Visits: 25},
		{Country: "FR", Visits: 5},
	}

	records := SumBy(places,
		func(p place) string { return p.Country },
		func(p place) float64 { return float64(p.Visits) },
	)

	assert.Equal(t, []Record{
		{Name: "DE", Value: 25},
		{Name: "FR", Value: 15},
	}, records)
}

func TestAvgBy(t *testing.T) {
	places := []place{
		{Country: "FR", Visits: 10},
		{Country: "FR", Visits: 20},
		{Country: "DE", Visits: 12},
	}

	records := AvgBy(places,
		func(p place) string { return p.Country },
		func(p place) float64 { return float64(p.Visits) },
	)

	assert.Equal(t, []Record{
		{Name: "FR", Value: 15},
		{Name: "DE", Value: 12},
	}, records)
}

func TestTopN(t *testing.T) {
	records := []Record{
		{Name: "FR", Value: 30},
		{Name: "DE", Value: 20},
		{Name: "IT", Value: 10},
		{Name: "ES", Value: 5},
		{Name: "PT", Value: 2},
	}

	top := TopN(records, 2)

	assert.Equal(t, []Record{
		{Name: "FR", Value: 30},
		{Name: "DE", Value: 20},
		{Name: "other", Value: 17},
	}, top)
}

func TestTopN_NoFoldNeeded(t *testing.T) {
	records := []Record{{Name: "FR", Value: 3}, {Name: "DE", Value: 1}}

	assert.Equal(t, records, TopN(records, 5))
	assert.Equal(t, records, TopN(records, 2))
}

func TestTopN_ZeroN(t *testing.T) {
	records := []Record{{Name: "FR", Value: 3}}
	assert.Equal(t, records, TopN(records, 0))
}

func TestBuckets(t *testing.T) {
	scores := []float64{5, 15, 35, 42, 61, 61.5, 99, 100, 120, -3}

	records := Buckets(scores, 20, 5)

	assert.Equal(t, []Record{
		{Name: "0-20", Value: 3},   // 5, 15, -3 clamped up
		{Name: "20-40", Value: 1},  // 35
		{Name: "40-60", Value: 1},  // 42
		{Name: "60-80", Value: 2},  // 61, 61.5
		{Name: "80-100", Value: 3}, // 99, plus 100 and 120 clamped down
	}, records)
}

func TestBuckets_EmptyValuesKeepAxis(t *testing.T) {
	records := Buckets(nil, 25, 4)

	require.Len(t, records, 4)
	assert.Equal(t, "0-25", records[0].Name)
	assert.Equal(t, "75-100", records[3].Name)
	for _, record := range records {
		assert.Zero(t, record.Value)
	}
}

func TestBuckets_InvalidShape(t *testing.T) {
	assert.Nil(t, Buckets([]float64{1}, 0, 5))
	assert.Nil(t, Buckets([]float64{1}, 10, 0))
}

func TestDensityCells(t *testing.T) {
	places := []place{
		{Lat: 48.8584, Lon: 2.2945},  // Paris
		{Lat: 48.8606, Lon: 2.3376},  // Paris, nearby
		{Lat: 52.5163, Lon: 13.3777}, // Berlin
		{Lat: 0, Lon: 0},             // placeholder, skipped
	}

	records := DensityCells(places,
		func(p place) (float64, float64, bool) {
			return p.Lat, p.Lon, p.Lat != 0 || p.Lon != 0
		},
		3,
	)

	require.Len(t, records, 2)

	// Both Paris points share a precision-3 cell; Berlin stands alone.
	assert.Equal(t, float64(2), records[0].Value)
	assert.Len(t, records[0].Name, 3)
	assert.Equal(t, float64(1), records[1].Value)
}
