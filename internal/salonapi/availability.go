package salonapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"salonbook/internal/schedule"
)

func availabilityCacheKey(stylistID int64) string {
	return fmt.Sprintf("availability:stylist:%d", stylistID)
}

// GetAvailability fetches raw availability records of a stylist.
func (c *Client) GetAvailability(ctx context.Context, stylistID int64) ([]schedule.Record, error) {
	path := strings.ReplaceAll(c.availabilityPath, "{id}", strconv.FormatInt(stylistID, 10))
	var records []schedule.Record
	if err := c.getCached(ctx, "availability", c.baseURL+path, availabilityCacheKey(stylistID), &records); err != nil {
		return nil, fmt.Errorf("get availability for stylist %d: %w", stylistID, err)
	}
	return records, nil
}

// ListAvailability fetches every availability record.
func (c *Client) ListAvailability(ctx context.Context) ([]schedule.Record, error) {
	var records []schedule.Record
	if err := c.doGet(ctx, "availability_list", c.baseURL+"/availability", &records); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return records, nil
}

// InvalidateAvailability drops the cached availability of a stylist.
func (c *Client) InvalidateAvailability(ctx context.Context, stylistID int64) {
	c.dropCache(ctx, availabilityCacheKey(stylistID))
}

type availabilityPayload struct {
	StylistID int64    `json:"stylistId"`
	Date      string   `json:"date"`
	TimeSlots []string `json:"timeSlots"`
}

func newAvailabilityPayload(rec schedule.Record) availabilityPayload {
	return availabilityPayload{StylistID: rec.StylistID, Date: rec.Date, TimeSlots: rec.TimeSlots}
}

// CreateAvailability saves a new availability record and drops the stylist's cached availability.
func (c *Client) CreateAvailability(ctx context.Context, rec schedule.Record) (schedule.Record, error) {
	var created schedule.Record
	if err := c.doPost(ctx, "availability_create", c.baseURL+"/availability", newAvailabilityPayload(rec), &created); err != nil {
		return schedule.Record{}, fmt.Errorf("create availability for stylist %d: %w", rec.StylistID, err)
	}
	c.InvalidateAvailability(ctx, rec.StylistID)
	if created.StylistID == 0 {
		created.StylistID = rec.StylistID
	}
	return created, nil
}

// UpdateAvailability replaces the date and slots of record rec.ID.
func (c *Client) UpdateAvailability(ctx context.Context, rec schedule.Record) (schedule.Record, error) {
	endpoint := fmt.Sprintf("%s/availability/%d", c.baseURL, rec.ID)
	var updated schedule.Record
	if err := c.doPut(ctx, "availability_update", endpoint, newAvailabilityPayload(rec), &updated); err != nil {
		return schedule.Record{}, fmt.Errorf("update availability %d: %w", rec.ID, err)
	}
	c.InvalidateAvailability(ctx, rec.StylistID)
	if updated.StylistID == 0 {
		updated.StylistID = rec.StylistID
	}
	return updated, nil
}

// DeleteAvailability removes a record of a stylist.
func (c *Client) DeleteAvailability(ctx context.Context, stylistID, recordID int64) error {
	endpoint := fmt.Sprintf("%s/availability/%d", c.baseURL, recordID)
	if err := c.doDelete(ctx, "availability_delete", endpoint); err != nil {
		return fmt.Errorf("delete availability %d: %w", recordID, err)
	}
	c.InvalidateAvailability(ctx, stylistID)
	return nil
}
