// Package geo хранит статичный справочник координат городов для отображения
// текущего положения груза на карте.
package geo

import (
	"strings"

	"github.com/kargopanel/backend/internal/domain"
)

type coords struct {
	lat float64
	lng float64
}

var cityCoords = map[string]coords{
	"istanbul": {lat: 41.0082, lng: 28.9784},
	"ankara":   {lat: 39.9334, lng: 32.8597},
	"izmir":    {lat: 38.4192, lng: 27.1287},
	"bursa":    {lat: 40.1826, lng: 29.0665},
	"antalya":  {lat: 36.8969, lng: 30.7133},
}

// fallback - Анкара, условный центр страны для неизвестных городов.
var fallback = coords{lat: 39.9334, lng: 32.8597}

// DefaultLocation возвращает стартовую точку груза для города получателя.
// Город сравнивается без учета регистра; неизвестный город дает fallback.
func DefaultLocation(city, district string) domain.Location {
	c, ok := cityCoords[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		c = fallback
	}
	return domain.Location{
		Lat:      c.lat,
		Lng:      c.lng,
		City:     city,
		District: district,
	}
}
