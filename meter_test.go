package cmhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAverageMeter(t *testing.T) {
	var m AverageMeter
	m.Update(1.0, 2)
	m.Update(4.0, 1)

	assert.InDelta(t, 4.0, m.Val, 0)
	assert.InDelta(t, 6.0, m.Sum, 1e-12)
	assert.Equal(t, 3, m.Count)
	assert.InDelta(t, 2.0, m.Avg, 1e-12)

	m.Reset()
	assert.Equal(t, AverageMeter{}, m)
}

func TestAverageMeter_ZeroSamples(t *testing.T) {
	var m AverageMeter
	m.Update(3.0, 0)
	assert.Zero(t, m.Count)
	assert.Zero(t, m.Avg)
}
