package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTPAllocations(t *testing.T) {
	t.Parallel()

	a := TPAllocations(10)
	assert.InDelta(t, 5.0, a.TP1, 1e-12)
	assert.InDelta(t, 3.0, a.TP2, 1e-12)
	assert.InDelta(t, 2.0, a.TP3, 1e-12)
}

func TestTPAllocations_SumToPosition(t *testing.T) {
	t.Parallel()

	for _, size := range []float64{0, 0.0001, 0.1, 1, 3.3333, 1234.5678, 987654.321} {
		a := TPAllocations(size)
		assert.InDelta(t, size, a.Total(), 1e-9*(1+size), "size=%v", size)
	}
}

func TestProfitPotential(t *testing.T) {
	t.Parallel()

	p := ProfitPotential(50000, 52000, 55000, 60000, 1)
	assert.Equal(t, 1000.0, p.TP1)
	assert.Equal(t, 1500.0, p.TP2)
	assert.Equal(t, 2000.0, p.TP3)
	assert.Equal(t, 4500.0, p.Total)
}

func TestProfitPotential_Short(t *testing.T) {
	t.Parallel()

	// Same distances below the entry give the same profit.
	long := ProfitPotential(100, 110, 120, 130, 20)
	short := ProfitPotential(100, 90, 80, 70, 20)
	assert.Equal(t, long, short)
	assert.InDelta(t, 100+120+120, short.Total, 1e-9)
}

func TestProfitPotential_TotalIsSumOfRoundedTiers(t *testing.T) {
	t.Parallel()

	// Tier profits: 0.5*0.0333 = 0.01665 -> 0.02, 0.3*0.0333 = 0.00999 -> 0.01,
	// 0.2*0.0333 = 0.00666 -> 0.01. Exact sum is 0.0333 (0.03), rounded sum 0.04.
	p := ProfitPotential(1, 2, 2, 2, 0.0333)
	assert.Equal(t, 0.02, p.TP1)
	assert.Equal(t, 0.01, p.TP2)
	assert.Equal(t, 0.01, p.TP3)
	assert.InDelta(t, 0.04, p.Total, 1e-12)
}

func TestProfitPotential_ZeroSize(t *testing.T) {
	t.Parallel()

	p := ProfitPotential(100, 110, 120, 130, 0)
	assert.Equal(t, Profit{}, p)
}
