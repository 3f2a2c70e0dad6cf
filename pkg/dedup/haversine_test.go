package dedup

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKM                 float64
		delta                  float64
	}{
		{
			name: "paris to london",
			lat1: 48.8566, lon1: 2.3522,
			lat2: 51.5074, lon2: -0.1278,
			wantKM: 343.6, delta: 1.0,
		},
		{
			name: "eiffel tower to champ de mars",
			lat1: 48.8584, lon1: 2.2945,
			lat2: 48.8556, lon2: 2.2986,
			wantKM: 0.43, delta: 0.05,
		},
		{
			name: "same point",
			lat1: 48.8566, lon1: 2.3522,
			lat2: 48.8566, lon2: 2.3522,
			wantKM: 0, delta: 0.0001,
		},
		{
			name: "across the date line",
			lat1: 0, lon1: 179.5,
			lat2: 0, lon2: -179.5,
			wantKM: 111.2, delta: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantKM, got, tt.delta)
		})
	}
}

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{name: "paris", lat: 48.8566, lon: 2.3522, want: true},
		{name: "southern hemisphere", lat: -23.5505, lon: -46.6333, want: true},
		{name: "null island placeholder", lat: 0, lon: 0, want: false},
		{name: "zero latitude alone is fine", lat: 0, lon: 2.3522, want: true},
		{name: "latitude out of range", lat: 95, lon: 0, want: false},
		{name: "longitude out of range", lat: 45, lon: -181, want: false},
		{name: "nan latitude", lat: math.NaN(), lon: 2.35, want: false},
		{name: "infinite longitude", lat: 45, lon: math.Inf(1), want: false},
		{name: "poles", lat: 90, lon: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCoordinates(tt.lat, tt.lon))
		})
	}
}
