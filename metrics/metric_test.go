package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shixiongfei/nio/metrics"
)

func TestAddAndGet(t *testing.T) {
	before := metrics.Get(metrics.SelectorRegister)
	metrics.Add(metrics.SelectorRegister, 3)
	assert.Equal(t, before+3, metrics.Get(metrics.SelectorRegister))
}

func TestGetOutOfRangeReturnsZero(t *testing.T) {
	assert.Equal(t, uint64(0), metrics.Get(metrics.Max))
	assert.Equal(t, uint64(0), metrics.Get(metrics.Max+100))
}

func TestAddOutOfRangeIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.Add(metrics.Max, 1)
	})
}

func TestGetAllReflectsIndividualCounters(t *testing.T) {
	metrics.Add(metrics.HashTableResize, 1)
	all := metrics.GetAll()
	assert.Equal(t, metrics.Get(metrics.HashTableResize), all[metrics.HashTableResize])
}
