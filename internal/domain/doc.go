// Package domain models the U.S. Congress map: state and district features,
// the view state machine that navigates them, camera fitting, and the
// datasets behind the member charts.
//
// # Data Source
//
// Geography comes from the Census Bureau cartographic boundary files (states
// and the current congressional districts), served by the congress API either
// as GeoJSON FeatureCollections or as TopoJSON topologies. Member records and
// bill-topic proportions come from the same API.
//
// # Feature Conventions
//
// States:
//
//	STATEFP      two-digit FIPS code, the click and selection key ("06" = CA)
//	STUSPS       postal abbreviation ("CA")
//	NAME         full name ("California"); member records use this form
//	STATE_PARTY  "R" or "D", used for choropleth coloring
//
// Districts:
//
//	OFFICE_ID     abbreviation plus two-digit number ("TX07"); the first two
//	              characters always equal the owning state's STUSPS
//	DISTRICT      district number, canonical when present (see ResolveDistrictNumber)
//	PARTY         "R" or "D"
//	LISTING_NAME  representative's display name
//
// At-large states use district "00" (e.g. "WY00").
//
// # View Levels
//
//	national ──SelectState──▶ state ──SelectDistrict──▶ district
//	    ▲                      │  ▲                        │
//	    └───────Reset──────────┘  └──────BackToState───────┘
//
// SelectState is valid from every level and Reset returns to national from
// every level. There is no terminal state.
//
// # Camera Fitting
//
// A state is framed by its bounding box padded on both sides: CA, TX and NV
// get 25% longitude and 30% latitude; other states spanning more than 15° of
// longitude or 10° of latitude get 15%/15%; the rest get 10%/10%. Districts
// are framed by their raw box. The projection scale is
//
//	sf = max(lonSpan, latSpan) · 0.1
//	large  (lon > 15 or lat > 10):  5 − 1.65·sf
//	medium (lon > 5  or lat > 5):   5 − sf
//	small:                          5 − 0.7·sf
//
// clamped to [2, 6].
//
// # Radar Proportions
//
// Each member record carries one proportion column per policy area and mode,
// e.g. "Health_and_Healthcare_self_proportion". State columns title-case the
// conjunction ("Health_And_Healthcare_state_self_proportion"). Some column
// names were cut at 64 characters by the upstream schema
// ("..._across_all_proportio"), and the CSV export spells the science area
// with double underscores; BuildRadarDataset accepts every variant.
package domain
