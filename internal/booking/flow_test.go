package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/internal/schedule"
	"salonbook/internal/slots"
)

func TestOpenCalendarWithEmptyCart(t *testing.T) {
	src := newSource()
	flow := flowFactory(src, testCatalog())()

	err := flow.OpenCalendar(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, src.Calls())
}

func TestFlowHappyPath(t *testing.T) {
	ctx := context.Background()
	flow := flowFactory(newSource(), testCatalog())()

	_, err := flow.Cart.Add(ctx, "1")
	require.NoError(t, err)
	_, err = flow.Cart.Add(ctx, "2")
	require.NoError(t, err)

	require.NoError(t, flow.OpenCalendar(ctx, 1))

	grid := flow.Grid()
	marked := map[string]bool{}
	for _, week := range grid.Weeks {
		for _, c := range week {
			if c.HasAvailability {
				marked[c.Date] = true
			}
		}
	}
	assert.Equal(t, map[string]bool{"2025-02-16": true, "2025-02-18": true}, marked)

	changed, err := flow.SelectDay("2025-02-16")
	require.NoError(t, err)
	assert.True(t, changed)

	evening, _ := flow.Picker.Section(schedule.PeriodEvening)
	assert.False(t, evening.Interactive)
	assert.False(t, flow.CanConfirm())

	_, err = flow.Confirm()
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = flow.PickSlot("09:30 AM")
	require.NoError(t, err)
	assert.True(t, flow.CanConfirm())

	draft, err := flow.Confirm()
	require.NoError(t, err)
	assert.Equal(t, "2025-02-16", draft.Date)
	assert.Equal(t, "09:30 AM", draft.Time)
	assert.Equal(t, int64(1), draft.StylistID)
	assert.Equal(t, "85.00", draft.TotalPrice.StringFixed(2))
	assert.Equal(t, 90, draft.TotalDuration)
	assert.Len(t, draft.Items, 2)
}

func TestSelectingNewDayClearsSlot(t *testing.T) {
	ctx := context.Background()
	flow := flowFactory(newSource(), testCatalog())()
	_, err := flow.Cart.Add(ctx, "1")
	require.NoError(t, err)
	require.NoError(t, flow.OpenCalendar(ctx, 1))

	_, err = flow.SelectDay("2025-02-16")
	require.NoError(t, err)
	_, err = flow.PickSlot("08:00 AM")
	require.NoError(t, err)

	changed, err := flow.SelectDay("2025-02-16")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, flow.CanConfirm())

	changed, err = flow.SelectDay("2025-02-18")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, flow.CanConfirm())
	_, ok := flow.Picker.Selected()
	assert.False(t, ok)
}

func TestPickSlotWithoutDay(t *testing.T) {
	ctx := context.Background()
	flow := flowFactory(newSource(), testCatalog())()
	_, err := flow.Cart.Add(ctx, "1")
	require.NoError(t, err)
	require.NoError(t, flow.OpenCalendar(ctx, 1))

	_, err = flow.PickSlot("08:00 AM")
	assert.ErrorIs(t, err, slots.ErrNoDate)
}

func TestSwitchingStylistResetsSelection(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	flow := flowFactory(src, testCatalog())()
	_, err := flow.Cart.Add(ctx, "1")
	require.NoError(t, err)

	require.NoError(t, flow.OpenCalendar(ctx, 1))
	_, err = flow.SelectDay("2025-02-16")
	require.NoError(t, err)

	require.NoError(t, flow.OpenCalendar(ctx, 1))
	assert.Equal(t, 1, src.Calls(), "same stylist is not refetched")
	_, ok := flow.Calendar.Selected()
	assert.True(t, ok)

	require.NoError(t, flow.OpenCalendar(ctx, 2))
	assert.Equal(t, 2, src.Calls())
	_, ok = flow.Calendar.Selected()
	assert.False(t, ok)
	assert.True(t, flow.Store.HasAvailability("2025-02-20"))
	assert.False(t, flow.Store.HasAvailability("2025-02-16"))
}

func TestFailedLoadRendersNoAvailabilityAndRetries(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	boom := errors.New("timeout")
	src.Fail(boom)

	flow := flowFactory(src, testCatalog())()
	_, err := flow.Cart.Add(ctx, "1")
	require.NoError(t, err)

	err = flow.OpenCalendar(ctx, 1)
	require.ErrorIs(t, err, boom)
	for _, week := range flow.Grid().Weeks {
		for _, c := range week {
			assert.False(t, c.HasAvailability)
		}
	}

	src.Fail(nil)
	require.NoError(t, flow.OpenCalendar(ctx, 1))
	assert.Equal(t, 2, src.Calls())
	assert.True(t, flow.Store.HasAvailability("2025-02-16"))
}

func TestOpenCalendarNeedsStylist(t *testing.T) {
	ctx := context.Background()
	flow := flowFactory(newSource(), testCatalog())()
	_, err := flow.Cart.Add(ctx, "1")
	require.NoError(t, err)

	assert.ErrorIs(t, flow.OpenCalendar(ctx, 0), ErrNoStylist)
	assert.ErrorIs(t, flow.Reload(ctx), ErrNoStylist)
}
