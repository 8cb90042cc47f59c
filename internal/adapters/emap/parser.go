package emap

import (
	"html"
	"regexp"
	"strings"

	"toiletsync/internal/domain"
)

// RestroomToken is the service tag the upstream uses for a customer restroom.
const RestroomToken = "02廁所"

var (
	blockRe = regexp.MustCompile(`(?s)<GeoPosition>(.*?)</GeoPosition>`)
	fieldRe = map[string]*regexp.Regexp{}
)

func init() {
	for _, tag := range []string{"POIID", "POIName", "Address", "X", "Y", "Telno", "StoreImageTitle", "OP_DAY", "OP_TIME"} {
		fieldRe[tag] = regexp.MustCompile(`(?s)<` + tag + `>(.*?)</` + tag + `>`)
	}
}

func field(block, tag string) string {
	m := fieldRe[tag].FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(m[1]))
}

// ParseRaw pulls every <GeoPosition> block out of a SearchStore payload.
// Blocks missing a POI id, name or address are dropped.
func ParseRaw(payload string) []domain.RawStore {
	var out []domain.RawStore
	for _, m := range blockRe.FindAllStringSubmatch(payload, -1) {
		b := m[1]
		rs := domain.RawStore{
			POIID:        field(b, "POIID"),
			Name:         field(b, "POIName"),
			Address:      field(b, "Address"),
			X:            field(b, "X"),
			Y:            field(b, "Y"),
			Phone:        field(b, "Telno"),
			ServiceTags:  field(b, "StoreImageTitle"),
			OpeningDays:  field(b, "OP_DAY"),
			OpeningHours: field(b, "OP_TIME"),
		}
		if rs.POIID == "" || rs.Name == "" || rs.Address == "" {
			continue
		}
		out = append(out, rs)
	}
	return out
}

// SplitServices turns "02廁所,03ATM" into its trimmed, non-empty tokens.
func SplitServices(tags string) []string {
	services := []string{}
	for _, s := range strings.Split(tags, ",") {
		if s = strings.TrimSpace(s); s != "" {
			services = append(services, s)
		}
	}
	return services
}

// HasRestroom reports whether any service token carries the restroom tag.
func HasRestroom(services []string) bool {
	for _, s := range services {
		if strings.Contains(s, RestroomToken) {
			return true
		}
	}
	return false
}

// Normalize decodes coordinates (X is longitude, Y latitude) and classifies restroom availability.
func Normalize(rs domain.RawStore) domain.Store {
	services := SplitServices(rs.ServiceTags)
	return domain.Store{
		POIID:        rs.POIID,
		Name:         rs.Name,
		Address:      rs.Address,
		Lat:          NormalizeCoordinate(rs.Y),
		Lng:          NormalizeCoordinate(rs.X),
		Phone:        rs.Phone,
		Services:     services,
		OpeningDays:  rs.OpeningDays,
		OpeningHours: rs.OpeningHours,
		HasToilet:    HasRestroom(services),
	}
}

// ParseStores is ParseRaw followed by Normalize on every block.
func ParseStores(payload string) []domain.Store {
	raw := ParseRaw(payload)
	out := make([]domain.Store, 0, len(raw))
	for _, rs := range raw {
		out = append(out, Normalize(rs))
	}
	return out
}
