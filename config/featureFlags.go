package config

import (
	"github.com/mmdatafocus/hubspot_pipeline/utils"
)

// StrictSequenceAnchor numbers only deals that passed through the anchor
// stage (sql). Deals without an anchor row stay unnumbered and are
// reported.
//
// Set via env:
// - STRICT_SEQUENCE_ANCHOR=true
func StrictSequenceAnchor() bool {
	return utils.EnvBoolDefault("STRICT_SEQUENCE_ANCHOR", false)
}

// WeightedPaths samples stage paths from the weighted table instead of
// uniformly.
//
// Set via env:
// - PIPELINE_WEIGHTED_PATHS=true
func WeightedPaths() bool {
	return utils.EnvBoolDefault("PIPELINE_WEIGHTED_PATHS", false)
}

// WarnNearDuplicateCompanies logs a warning when a new company name is a few
// edits away from one already seen. Names are never merged.
//
// Set via env:
// - WARN_NEAR_DUPLICATE_COMPANIES=false to silence
func WarnNearDuplicateCompanies() bool {
	return utils.EnvBoolDefault("WARN_NEAR_DUPLICATE_COMPANIES", true)
}
