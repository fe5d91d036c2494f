package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockMetricItem struct {
	name string
}

func (mock *mockMetricItem) JSONString() string {
	return mock.name
}

func newTestMetric() *MetricSet {
	m := NewMetricSet()
	m.metrics["TEST"] = &mockMetricItem{name: "TEST"}
	return m
}

func TestMetricSet_HasMetrics(t *testing.T) {
	metric := newTestMetric()

	assert.True(t, metric.HasMetrics("TEST"), "should contain label(TEST)")
	assert.False(t, metric.HasMetrics("FTEST"), "shouldn't contain label(FTEST)")
}

func TestMetricSet_SetMetrics(t *testing.T) {
	metric := newTestMetric()

	mockItem := &mockMetricItem{name: "TEST"}
	assert.Equal(t, ErrMetricLabelExist, metric.SetMetrics("TEST", mockItem), "label(TEST)不应该设置成功")

	assert.Nil(t, metric.SetMetrics("TEST1", mockItem), "label(TEST1)应该设置成功")

	assert.True(t, metric.HasMetrics("TEST"), "should contain label(TEST)")
	assert.True(t, metric.HasMetrics("TEST1"), "should contain label(TEST1)")
}

func TestMetricSet_GetAlllabels(t *testing.T) {
	metric := newTestMetric()
	assert.Nil(t, metric.SetMetrics(LabelLedger, MetricFunc(func() string { return "{}" })))
	assert.Nil(t, metric.SetMetrics(LabelAuction, MetricFunc(func() string { return `{"round":1}` })))

	labels := metric.GetAlllabels()
	assert.Equal(t, []string{"TEST", LabelAuction, LabelLedger}, labels)

	items := metric.GetAllMetrics()
	assert.Equal(t, 3, len(items))
	assert.Equal(t, `{"round":1}`, items[1].JSONString())
	assert.Nil(t, metric.GetMetrics("missing"))
}
