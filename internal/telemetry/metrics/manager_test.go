package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CountersRegistered(t *testing.T) {
	manager, registry := NewTestManagerAndRegistry()
	require.NotNil(t, manager)

	manager.CounterNutritionLogs.Inc()
	manager.CounterParseFailures.Inc()
	manager.CounterParseFailures.Inc()
	manager.GaugeLifeSignal.Set(1)

	families, err := registry.Gather()
	require.NoError(t, err)

	byName := map[string]*dto.MetricFamily{}
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	nutritionLogs, ok := byName["forge_test_server_nutrition_logs"]
	require.True(t, ok)
	assert.Equal(t, float64(1), nutritionLogs.GetMetric()[0].GetCounter().GetValue())

	parseFailures, ok := byName["forge_test_server_parse_failures"]
	require.True(t, ok)
	assert.Equal(t, float64(2), parseFailures.GetMetric()[0].GetCounter().GetValue())

	lifeSignal, ok := byName["forge_test_server_life_signal"]
	require.True(t, ok)
	assert.Equal(t, float64(1), lifeSignal.GetMetric()[0].GetGauge().GetValue())
}
