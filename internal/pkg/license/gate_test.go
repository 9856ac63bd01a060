// internal/pkg/license/gate_test.go
package license

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/branchops-backend/internal/config"
)

func TestConfigGate(t *testing.T) {
	gate := NewConfigGate(&config.Config{
		Features: config.FeatureConfig{
			AnomalyDetection: true,
			QuerySystem:      false,
		},
	})

	assert.True(t, gate.Enabled(FeatureAnomalyDetection))
	assert.False(t, gate.Enabled(FeatureQuerySystem))
	assert.False(t, gate.Enabled("unknown_feature"))
}
