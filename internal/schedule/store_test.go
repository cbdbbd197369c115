package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) GetAvailability(ctx context.Context, stylistID int64) ([]Record, error) {
	args := m.Called(ctx, stylistID)
	recs, _ := args.Get(0).([]Record)
	return recs, args.Error(1)
}

type blockingSource struct {
	started chan struct{}
	release chan struct{}
	records []Record
}

func (b *blockingSource) GetAvailability(ctx context.Context, stylistID int64) ([]Record, error) {
	close(b.started)
	<-b.release
	return b.records, nil
}

func TestStoreLoad(t *testing.T) {
	src := new(mockSource)
	src.On("GetAvailability", mock.Anything, int64(1)).Return([]Record{
		{ID: 10, Date: "2025-02-16", TimeSlots: []string{"09:00 AM", "01:00 PM"}},
	}, nil)

	store := NewStore(src, nil)
	require.NoError(t, store.Load(context.Background(), 1))

	assert.True(t, store.Loaded())
	assert.False(t, store.Loading())
	assert.NoError(t, store.Err())
	assert.Equal(t, int64(1), store.StylistID())
	assert.True(t, store.HasAvailability("2025-02-16"))
	assert.False(t, store.HasAvailability("2025-02-17"))
	assert.False(t, store.LoadedAt().IsZero())
	src.AssertExpectations(t)
}

func TestStoreKeepsLastGoodIndexForSameStylist(t *testing.T) {
	src := new(mockSource)
	boom := errors.New("backend down")
	src.On("GetAvailability", mock.Anything, int64(1)).Return([]Record{
		{ID: 10, Date: "2025-02-16", TimeSlots: []string{"09:00 AM"}},
	}, nil).Once()
	src.On("GetAvailability", mock.Anything, int64(1)).Return(nil, boom).Once()

	store := NewStore(src, nil)
	require.NoError(t, store.Load(context.Background(), 1))

	err := store.Load(context.Background(), 1)
	require.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.Err(), boom)
	assert.True(t, store.HasAvailability("2025-02-16"))
}

func TestStoreEmptiesIndexForNewStylistOnFailure(t *testing.T) {
	src := new(mockSource)
	boom := errors.New("backend down")
	src.On("GetAvailability", mock.Anything, int64(1)).Return([]Record{
		{ID: 10, Date: "2025-02-16", TimeSlots: []string{"09:00 AM"}},
	}, nil)
	src.On("GetAvailability", mock.Anything, int64(2)).Return(nil, boom)

	store := NewStore(src, nil)
	require.NoError(t, store.Load(context.Background(), 1))
	require.Error(t, store.Load(context.Background(), 2))

	assert.Equal(t, int64(2), store.StylistID())
	assert.False(t, store.Loaded())
	assert.False(t, store.HasAvailability("2025-02-16"))
	assert.Zero(t, store.Index().Len())
}

func TestStoreIgnoresConcurrentLoadForSameStylist(t *testing.T) {
	src := &blockingSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		records: []Record{{ID: 1, Date: "2025-02-16", TimeSlots: []string{"10:00 AM"}}},
	}
	store := NewStore(src, nil)

	done := make(chan error, 1)
	go func() { done <- store.Load(context.Background(), 7) }()
	<-src.started

	assert.True(t, store.Loading())
	assert.ErrorIs(t, store.Load(context.Background(), 7), ErrLoadInProgress)

	close(src.release)
	require.NoError(t, <-done)
	assert.True(t, store.HasAvailability("2025-02-16"))
}

// stylistGate blocks fetches for one stylist until released.
type stylistGate struct {
	held    int64
	started chan struct{}
	release chan struct{}
	records map[int64][]Record
}

func (g *stylistGate) GetAvailability(_ context.Context, stylistID int64) ([]Record, error) {
	if stylistID == g.held {
		close(g.started)
		<-g.release
	}
	return g.records[stylistID], nil
}

func TestStoreDropsSupersededLoad(t *testing.T) {
	src := &stylistGate{
		held:    1,
		started: make(chan struct{}),
		release: make(chan struct{}),
		records: map[int64][]Record{
			1: {{ID: 1, Date: "2025-02-16", TimeSlots: []string{"09:00 AM"}}},
			2: {{ID: 2, Date: "2025-02-20", TimeSlots: []string{"10:00 AM"}}},
		},
	}
	store := NewStore(src, nil)

	done := make(chan error, 1)
	go func() { done <- store.Load(context.Background(), 1) }()
	<-src.started

	require.NoError(t, store.Load(context.Background(), 2))
	assert.True(t, store.HasAvailability("2025-02-20"))

	close(src.release)
	require.NoError(t, <-done)

	assert.Equal(t, int64(2), store.StylistID())
	assert.True(t, store.HasAvailability("2025-02-20"))
	assert.False(t, store.HasAvailability("2025-02-16"))
	assert.False(t, store.Loading())
}
