package domain

import "time"

// RawStore is one <GeoPosition> block as read from the upstream payload.
// Coordinates are still in the upstream's ambiguous encoding.
type RawStore struct {
	POIID        string
	Name         string
	Address      string
	X, Y         string
	Phone        string
	ServiceTags  string
	OpeningDays  string
	OpeningHours string
}

// Store is a RawStore after coordinate decoding and service-tag classification.
type Store struct {
	POIID        string
	Name         string
	Address      string
	Lat, Lng     float64
	Phone        string
	Services     []string
	OpeningDays  string
	OpeningHours string
	HasToilet    bool
}

type Coords struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// CatalogEntry is the persisted unit read by the toilet finder. HasToilet is always true.
type CatalogEntry struct {
	POIID        string    `json:"poi_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	District     string    `json:"district"`
	Coordinates  Coords    `json:"coordinates"`
	Phone        string    `json:"phone"`
	OpeningHours string    `json:"opening_hours"`
	OpeningDays  string    `json:"opening_days"`
	Services     []string  `json:"services"`
	HasToilet    bool      `json:"has_toilet"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UpsertOutcome int

const (
	Unchanged UpsertOutcome = iota
	Inserted
	Updated
)

func (o UpsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}
