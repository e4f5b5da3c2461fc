// Package scoring turns historical reports and a weather snapshot into a
// water quality prediction.
//
// The score starts from a time- and distance-weighted mean of nearby reports
// (or a prior of 75 when none are within 5 km), is adjusted by weather,
// seasonal, and proximity modifiers, and is clamped to [0,100]. Weights are
// tiered step functions with inclusive upper bounds.
package scoring
