package mysql

const venueColumns = `
  id, name, category, description, district, address, lat, lon,
  cost_min, cost_max, currency, weather, difficulty, elderly_friendly,
  wheelchair_accessible, has_elevator, accessible_toilets, step_free_access, parent_facilities, rest_areas,
  soft_meals, vegetarian, halal, no_seafood, allergy_friendly,
  notes, source, fetched_at`

const selectColumns = `
  id, name, category, description, district, address, lat, lon,
  cost_min, cost_max, currency, weather, difficulty, elderly_friendly,
  wheelchair_accessible, has_elevator, accessible_toilets, step_free_access, parent_facilities, rest_areas,
  soft_meals, vegetarian, halal, no_seafood, allergy_friendly,
  notes, fetched_at`

const upsertVenueSQL = `
INSERT INTO venues (` + venueColumns + `)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name                  = VALUES(name),
  category              = VALUES(category),
  description           = VALUES(description),
  district              = VALUES(district),
  address               = VALUES(address),
  lat                   = VALUES(lat),
  lon                   = VALUES(lon),
  cost_min              = VALUES(cost_min),
  cost_max              = VALUES(cost_max),
  currency              = VALUES(currency),
  weather               = VALUES(weather),
  difficulty            = VALUES(difficulty),
  elderly_friendly      = VALUES(elderly_friendly),
  wheelchair_accessible = VALUES(wheelchair_accessible),
  has_elevator          = VALUES(has_elevator),
  accessible_toilets    = VALUES(accessible_toilets),
  step_free_access      = VALUES(step_free_access),
  parent_facilities     = VALUES(parent_facilities),
  rest_areas            = VALUES(rest_areas),
  soft_meals            = VALUES(soft_meals),
  vegetarian            = VALUES(vegetarian),
  halal                 = VALUES(halal),
  no_seafood            = VALUES(no_seafood),
  allergy_friendly      = VALUES(allergy_friendly),
  notes                 = VALUES(notes),
  source                = VALUES(source),
  fetched_at            = VALUES(fetched_at),
  updated_at            = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getVenueSQL = `SELECT` + selectColumns + `
FROM venues
WHERE id = ?
`

// listVenuesPrefix is completed with an ORDER BY built from the requested
// flags. Nothing is filtered out: a stored No has to reach the merge.
const listVenuesPrefix = `SELECT` + selectColumns + `
FROM venues
`
