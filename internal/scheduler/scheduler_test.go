package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/gridwatch/internal/domain"
	"github.com/avolkov/gridwatch/internal/ledger"
)

// fakeSource returns scripted prices (or errors) in order, then repeats the
// last entry.
type fakeSource struct {
	prices []float64
	errs   []error
	calls  int
	assets []string
}

func (f *fakeSource) CurrentPrice(_ context.Context, assetID, _ string) (decimal.Decimal, error) {
	f.assets = append(f.assets, assetID)
	i := f.calls
	if i >= len(f.prices) {
		i = len(f.prices) - 1
	}
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return decimal.Decimal{}, f.errs[i]
	}
	return decimal.NewFromFloat(f.prices[i]), nil
}

type renderCall struct {
	asset string
	snap  domain.Snapshot
}

type fakePresenter struct {
	renders []renderCall
	notices []string
	resets  []string
}

func (f *fakePresenter) Render(_ context.Context, assetID string, snap domain.Snapshot) {
	f.renders = append(f.renders, renderCall{asset: assetID, snap: snap})
}

func (f *fakePresenter) Notice(_ context.Context, _ string, message string) {
	f.notices = append(f.notices, message)
}

func (f *fakePresenter) Reset(assetID string) {
	f.resets = append(f.resets, assetID)
}

type fakePriceCache struct {
	set map[string]decimal.Decimal
}

func (f *fakePriceCache) SetPrice(_ context.Context, assetID string, price decimal.Decimal, _ time.Time) error {
	if f.set == nil {
		f.set = make(map[string]decimal.Decimal)
	}
	f.set[assetID] = price
	return nil
}

func (f *fakePriceCache) GetPrice(_ context.Context, assetID string) (decimal.Decimal, time.Time, error) {
	p, ok := f.set[assetID]
	if !ok {
		return decimal.Decimal{}, time.Time{}, domain.ErrNotFound
	}
	return p, time.Time{}, nil
}

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.New(ledger.Config{
		Capital:       decimal.NewFromInt(100),
		GridSize:      10,
		BuyThreshold:  decimal.NewFromFloat(0.02),
		SellThreshold: decimal.NewFromFloat(0.02),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return l
}

func newTestScheduler(t *testing.T, source *fakeSource, presenter *fakePresenter, prices domain.PriceCache) (*Scheduler, *ledger.Ledger) {
	t.Helper()
	led := newTestLedger(t)
	s := New(Config{
		AssetID:    "bitcoin",
		VsCurrency: "usd",
		Interval:   10 * time.Second,
	}, source, led, presenter, prices, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return s, led
}

func TestTickFetchesEvaluatesAndRenders(t *testing.T) {
	source := &fakeSource{prices: []float64{100}}
	presenter := &fakePresenter{}
	s, _ := newTestScheduler(t, source, presenter, nil)

	require.NoError(t, s.Tick(context.Background()))

	require.Len(t, presenter.renders, 1)
	assert.Equal(t, "bitcoin", presenter.renders[0].asset)
	require.NotNil(t, presenter.renders[0].snap.Opened)
	assert.True(t, presenter.renders[0].snap.Sample.Value.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, presenter.notices)
}

func TestFetchFailureSkipsLedgerAndNotices(t *testing.T) {
	source := &fakeSource{
		prices: []float64{0, 100},
		errs:   []error{domain.ErrPriceUnavailable, nil},
	}
	presenter := &fakePresenter{}
	s, led := newTestScheduler(t, source, presenter, nil)

	err := s.Tick(context.Background())
	require.ErrorIs(t, err, domain.ErrPriceUnavailable)
	assert.Empty(t, led.Positions())
	assert.Empty(t, presenter.renders)
	require.Len(t, presenter.notices, 1)
	assert.Equal(t, "price unavailable", presenter.notices[0])

	// The loop continues on the next tick.
	require.NoError(t, s.Tick(context.Background()))
	assert.Len(t, led.Positions(), 1)
}

func TestSelectAssetResetsPresenterButKeepsLedger(t *testing.T) {
	source := &fakeSource{prices: []float64{100}}
	presenter := &fakePresenter{}
	s, led := newTestScheduler(t, source, presenter, nil)

	require.NoError(t, s.Tick(context.Background()))
	require.Len(t, led.Positions(), 1)

	s.SelectAsset("ethereum")

	assert.Equal(t, "ethereum", s.AssetID())
	assert.Equal(t, []string{"ethereum"}, presenter.resets)
	// Positions survive the switch: the ledger is process-wide.
	assert.Len(t, led.Positions(), 1)

	require.NoError(t, s.Tick(context.Background()))
	assert.Equal(t, "ethereum", source.assets[len(source.assets)-1])
}

func TestTickMirrorsPriceToCache(t *testing.T) {
	source := &fakeSource{prices: []float64{42.5}}
	cache := &fakePriceCache{}
	s, _ := newTestScheduler(t, source, &fakePresenter{}, cache)

	require.NoError(t, s.Tick(context.Background()))

	p, _, err := cache.GetPrice(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromFloat(42.5)))
}

func TestGridFullStopsBuyingAcrossTicks(t *testing.T) {
	// Eleven qualifying drops; only ten positions may ever open.
	prices := make([]float64, 11)
	v := 1000.0
	for i := range prices {
		prices[i] = v
		v *= 0.95
	}
	source := &fakeSource{prices: prices}
	presenter := &fakePresenter{}
	s, led := newTestScheduler(t, source, presenter, nil)

	for range prices {
		require.NoError(t, s.Tick(context.Background()))
	}

	assert.Len(t, led.Positions(), 10)
	last := presenter.renders[len(presenter.renders)-1]
	assert.Nil(t, last.snap.Opened)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	source := &fakeSource{prices: []float64{100}}
	presenter := &fakePresenter{}
	led := newTestLedger(t)
	s := New(Config{
		AssetID:    "bitcoin",
		VsCurrency: "usd",
		Interval:   time.Millisecond,
	}, source, led, presenter, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotEmpty(t, presenter.renders)
	// Run resets the presenter once on start.
	assert.Equal(t, []string{"bitcoin"}, presenter.resets)
}
