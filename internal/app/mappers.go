package app

import (
	"time"

	"toiletsync/internal/domain"
)

// mapEntry builds the catalog document for a restroom store found in region r.
// CreatedAt is only honoured by the repository on first insert.
func mapEntry(s domain.Store, r domain.Region, now time.Time) domain.CatalogEntry {
	services := make([]string, len(s.Services))
	copy(services, s.Services)
	return domain.CatalogEntry{
		POIID:        s.POIID,
		Name:         s.Name,
		Address:      s.Address,
		City:         r.CityName,
		District:     r.Name,
		Coordinates:  domain.Coords{Lat: s.Lat, Lng: s.Lng},
		Phone:        s.Phone,
		OpeningHours: s.OpeningHours,
		OpeningDays:  s.OpeningDays,
		Services:     services,
		HasToilet:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
