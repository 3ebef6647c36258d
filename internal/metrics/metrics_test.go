package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCountersIncrement(t *testing.T) {
	before := counterValue(t, answers.WithLabelValues("true"))
	AnswerSubmitted(true)
	assert.Equal(t, before+1, counterValue(t, answers.WithLabelValues("true")))

	beforeExhausted := counterValue(t, draws.WithLabelValues("exhausted"))
	QuestionDrawn(true)
	assert.Equal(t, beforeExhausted+1, counterValue(t, draws.WithLabelValues("exhausted")))

	beforeSkips := counterValue(t, skips)
	SkipGranted()
	assert.Equal(t, beforeSkips+1, counterValue(t, skips))
}
