package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLocation(t *testing.T) {
	cases := []struct {
		name     string
		city     string
		wantLat  float64
		wantLng  float64
	}{
		{name: "known city", city: "istanbul", wantLat: 41.0082, wantLng: 28.9784},
		{name: "case insensitive", city: "Istanbul", wantLat: 41.0082, wantLng: 28.9784},
		{name: "unknown city falls back to ankara", city: "rize", wantLat: 39.9334, wantLng: 32.8597},
		{name: "empty city falls back", city: "", wantLat: 39.9334, wantLng: 32.8597},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			loc := DefaultLocation(c.city, "merkez")
			assert.InDelta(t, c.wantLat, loc.Lat, 0.0001)
			assert.InDelta(t, c.wantLng, loc.Lng, 0.0001)
			assert.Equal(t, c.city, loc.City)
			assert.Equal(t, "merkez", loc.District)
		})
	}
}
