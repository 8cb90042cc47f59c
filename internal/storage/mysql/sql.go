package mysql

// created_at is only written by the INSERT branch; a duplicate key refreshes
// every other column. MySQL reports 1 affected row for an insert, 2 for an
// update and 0 when the row already held identical values.
const upsertEntrySQL = `
INSERT INTO catalog_entries
  (poi_id, name, address, city, district, lat, lng, phone, opening_hours, opening_days, services, has_toilet, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, TRUE, ?, ?)
ON DUPLICATE KEY UPDATE
  name          = VALUES(name),
  address       = VALUES(address),
  city          = VALUES(city),
  district      = VALUES(district),
  lat           = VALUES(lat),
  lng           = VALUES(lng),
  phone         = VALUES(phone),
  opening_hours = VALUES(opening_hours),
  opening_days  = VALUES(opening_days),
  services      = VALUES(services),
  has_toilet    = TRUE,
  updated_at    = VALUES(updated_at)
`

const getEntrySQL = `
SELECT
  poi_id, name, address, city, district, lat, lng, phone,
  opening_hours, opening_days, services, has_toilet, created_at, updated_at
FROM catalog_entries
WHERE poi_id = ?
`

const countEntriesSQL = `SELECT COUNT(*) FROM catalog_entries`
