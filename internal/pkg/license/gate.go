// internal/pkg/license/gate.go
package license

import (
	"github.com/your-org/branchops-backend/internal/config"
)

// Feature keys understood by the gate
const (
	FeatureAnomalyDetection = "anomaly_detection"
	FeatureQuerySystem      = "query_system"
)

// Gate answers whether an optional feature is enabled for this deployment
type Gate interface {
	Enabled(feature string) bool
}

// ConfigGate is a Gate backed by static configuration. Feature flags are
// read once at startup; flipping a flag requires a restart.
type ConfigGate struct {
	features map[string]bool
}

// NewConfigGate builds a gate from the feature section of the configuration
func NewConfigGate(cfg *config.Config) *ConfigGate {
	return &ConfigGate{
		features: map[string]bool{
			FeatureAnomalyDetection: cfg.Features.AnomalyDetection,
			FeatureQuerySystem:      cfg.Features.QuerySystem,
		},
	}
}

// Enabled reports whether the named feature is switched on
func (g *ConfigGate) Enabled(feature string) bool {
	return g.features[feature]
}
