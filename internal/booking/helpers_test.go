package booking

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"salonbook/internal/calendar"
	"salonbook/internal/cart"
	"salonbook/internal/catalog"
	"salonbook/internal/schedule"
	"salonbook/internal/slots"
)

type fakeSource struct {
	mu      sync.Mutex
	records map[int64][]schedule.Record
	err     error
	calls   int
}

func (f *fakeSource) GetAvailability(_ context.Context, stylistID int64) ([]schedule.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records[stylistID], nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func newSource() *fakeSource {
	return &fakeSource{records: map[int64][]schedule.Record{
		1: {
			{ID: 1, Date: "2025-02-16", TimeSlots: []string{"08:00 AM", "09:30 AM", "12:30 PM"}},
			{ID: 2, Date: "2025-02-18", TimeSlots: []string{"05:00 PM"}},
		},
		2: {
			{ID: 3, Date: "2025-02-20", TimeSlots: []string{"10:00 AM"}},
		},
	}}
}

func testCatalog() *catalog.Local {
	return catalog.NewLocal([]catalog.Service{
		{ID: "1", Name: "Haircut", Price: decimal.RequireFromString("25.00"), Duration: 30},
		{ID: "2", Name: "Massage", Price: decimal.RequireFromString("60.00"), Duration: 60},
		{ID: "3", Name: "Facial", Price: decimal.RequireFromString("50.00"), Duration: 45},
	})
}

func flowFactory(src schedule.Source, services cart.Resolver) FlowFactory {
	clock := func() time.Time { return time.Date(2025, time.February, 14, 9, 0, 0, 0, time.UTC) }
	return func() *Flow {
		return NewFlow(
			cart.New(services),
			schedule.NewStore(src, nil),
			calendar.New(calendar.WithClock(clock)),
			slots.NewPicker(),
		)
	}
}
