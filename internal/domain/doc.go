// Package domain models water quality reports, weather snapshots, and the
// prediction results derived from them.
//
// # Reports
//
// Historical reports are sparse, low-trust point observations submitted by
// the community, fixed sensors, or official sampling. Each carries a quality
// score on a 0–100 scale where higher is safer:
//
//	{"id":"rpt-1","lat":19.0760,"lon":72.8777,"quality_score":82,
//	 "type":"community","reported_at":"2026-05-01T09:30:00Z"}
//
// Submissions arrive on a Kafka topic and are parsed by [ParseRawReport].
// Missing IDs are derived deterministically from type|lat|lon|time|score so
// replays deduplicate without coordination.
//
// # Classifications
//
// A score maps onto two parallel ordinal scales with identical cut points:
//
//	score ≥ 80  safe      / low risk
//	score ≥ 60  moderate  / medium risk
//	score ≥ 40  poor      / high risk
//	otherwise   critical  / critical risk
//
// Boundaries are inclusive at the lower edge (80.0 is safe, 79.999 moderate).
// All classifications are closed enumerations that marshal to their lowercase
// labels and reject unknown labels on decode.
//
// # Places
//
// Coordinates are bucketed to four decimal places (~11 m) for place lookups.
// [FallbackPlaceLabel] produces a deterministic label when no provider label
// is available.
package domain
