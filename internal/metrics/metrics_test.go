package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestRecordersDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		IncAvailabilityLoad("ok")
		ObserveAvailabilityLoad(15 * time.Millisecond)
		IncCartOperation("add", "ok")
		IncBooking("submitted")
		IncHTTPRequest("GET", "/api/cart", 200)
		ObserveBackendRequest("availability", errors.New("boom"), time.Second)
		SetSessionsActive(3)
	})
}
