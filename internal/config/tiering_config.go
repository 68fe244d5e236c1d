package config

// TieringConfig defines the bulk tier-placement operator. The operator is
// invoked externally, not by the autonomous poll loop.
type TieringConfig struct {
	// PromoteObjective is the placement directive applied when promoting
	// matching files to the fast tier.
	PromoteObjective string `json:"promote_objective,omitempty" yaml:"promote_objective,omitempty"`

	// SearchRoot bounds the tag search when enumerating matching paths.
	SearchRoot string `json:"search_root,omitempty" yaml:"search_root,omitempty"`
}

// NewDefaultTieringConfig creates default tiering configuration
func NewDefaultTieringConfig() TieringConfig {
	return TieringConfig{
		PromoteObjective: "Place-on-tier0",
		SearchRoot:       DefaultMountRootPrefix,
	}
}
