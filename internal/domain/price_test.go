package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPriceSample(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sample, err := NewPriceSample(64123.45, at)
	require.NoError(t, err)
	assert.Equal(t, "64123.45", sample.Value.String())
	assert.Equal(t, at, sample.ObservedAt)
}

func TestNewPriceSampleRejectsGarbage(t *testing.T) {
	at := time.Now()

	for _, value := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := NewPriceSample(value, at)
		assert.ErrorIs(t, err, ErrInvalidPrice, "value %v", value)
	}
}

func TestAssetLabel(t *testing.T) {
	a := Asset{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"}
	assert.Equal(t, "BTC - Bitcoin", a.Label())
}
