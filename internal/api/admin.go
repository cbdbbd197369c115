package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"salonbook/internal/auth"
	"salonbook/internal/report"
	"salonbook/internal/schedule"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type validateSlotsRequest struct {
	TimeSlots []string `json:"time_slots" validate:"required,min=1,dive,required"`
}

type saveAvailabilityRequest struct {
	Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlots []string `json:"time_slots" validate:"required,min=1,dive,required"`
}

type periodSlots struct {
	Period schedule.Period `json:"period"`
	Title  string          `json:"title"`
	Range  string          `json:"range"`
	Slots  []string        `json:"slots"`
}

type availabilityResponse struct {
	StylistID int64                   `json:"stylist_id"`
	Dates     map[string]schedule.Day `json:"dates"`
	Skipped   []string                `json:"skipped,omitempty"`
}

// handleAdminAvailability returns the shaped availability of a stylist.
// GET /api/admin/availability/{stylistID}
func (s *Server) handleAdminAvailability(w http.ResponseWriter, r *http.Request) {
	stylistID, idx, skipped, ok := s.loadStylistIndex(w, r)
	if !ok {
		return
	}

	resp := availabilityResponse{
		StylistID: stylistID,
		Dates:     make(map[string]schedule.Day, idx.Len()),
	}
	for _, date := range idx.Dates() {
		day, _ := idx.Day(date)
		resp.Dates[date] = day
	}
	for _, err := range skipped {
		resp.Skipped = append(resp.Skipped, err.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/admin/availability/{stylistID}/export
func (s *Server) handleAdminAvailabilityExport(w http.ResponseWriter, r *http.Request) {
	stylistID, idx, _, ok := s.loadStylistIndex(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteAvailability(&buf, stylistID, idx); err != nil {
		s.logger.Error().Err(err).Int64("stylist_id", stylistID).Msg("export availability")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=availability_stylist_%d.xlsx", stylistID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleValidateSlots checks that every time string parses and reports its period.
// POST /api/admin/availability/validate
func (s *Server) handleValidateSlots(w http.ResponseWriter, r *http.Request) {
	var req validateSlotsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	periods, err := schedule.ValidateSlots(req.TimeSlots)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"periods": periods})
}

// handleGenerateSlots returns the half-hour slot template of each period.
// GET /api/admin/availability/slots?period=morning
func (s *Server) handleGenerateSlots(w http.ResponseWriter, r *http.Request) {
	periods := schedule.Periods
	if raw := r.URL.Query().Get("period"); raw != "" {
		p := schedule.Period(raw)
		if !p.Valid() {
			writeError(w, http.StatusBadRequest, "unknown period")
			return
		}
		periods = []schedule.Period{p}
	}

	out := make([]periodSlots, 0, len(periods))
	for _, p := range periods {
		generated := schedule.GenerateSlots(p)
		labels := make([]string, 0, len(generated))
		for _, slot := range generated {
			labels = append(labels, slot.Label)
		}
		out = append(out, periodSlots{Period: p, Title: p.Title(), Range: p.Range(), Slots: labels})
	}
	writeJSON(w, http.StatusOK, map[string]any{"periods": out})
}

// POST /api/admin/availability/{stylistID}
func (s *Server) handleCreateAvailability(w http.ResponseWriter, r *http.Request) {
	stylistID, ok := stylistParam(w, r)
	if !ok {
		return
	}
	rec, ok := s.decodeAvailability(w, r, stylistID)
	if !ok {
		return
	}

	created, err := s.backend.CreateAvailability(r.Context(), rec)
	if err != nil {
		s.logger.Error().Err(err).Int64("stylist_id", stylistID).Msg("create availability")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// PUT /api/admin/availability/{stylistID}/{recordID}
func (s *Server) handleUpdateAvailability(w http.ResponseWriter, r *http.Request) {
	stylistID, recordID, ok := s.ownedRecord(w, r)
	if !ok {
		return
	}
	rec, ok := s.decodeAvailability(w, r, stylistID)
	if !ok {
		return
	}
	rec.ID = recordID

	updated, err := s.backend.UpdateAvailability(r.Context(), rec)
	if err != nil {
		s.logger.Error().Err(err).Int64("record_id", recordID).Msg("update availability")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DELETE /api/admin/availability/{stylistID}/{recordID}
func (s *Server) handleDeleteAvailability(w http.ResponseWriter, r *http.Request) {
	stylistID, recordID, ok := s.ownedRecord(w, r)
	if !ok {
		return
	}
	if err := s.backend.DeleteAvailability(r.Context(), stylistID, recordID); err != nil {
		s.logger.Error().Err(err).Int64("record_id", recordID).Msg("delete availability")
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeAvailability validates a save request. Every slot must parse and
// classify before anything is sent to the backend.
func (s *Server) decodeAvailability(w http.ResponseWriter, r *http.Request, stylistID int64) (schedule.Record, bool) {
	var req saveAvailabilityRequest
	if !s.decodeJSON(w, r, &req) {
		return schedule.Record{}, false
	}
	if _, err := schedule.ValidateSlots(req.TimeSlots); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return schedule.Record{}, false
	}
	labels, err := schedule.NormalizeSlots(req.TimeSlots)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return schedule.Record{}, false
	}
	return schedule.Record{StylistID: stylistID, Date: req.Date, TimeSlots: labels}, true
}

// ownedRecord reads {stylistID} and {recordID} and checks that the record
// belongs to the stylist.
func (s *Server) ownedRecord(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	stylistID, ok := stylistParam(w, r)
	if !ok {
		return 0, 0, false
	}
	recordID, err := strconv.ParseInt(chi.URLParam(r, "recordID"), 10, 64)
	if err != nil || recordID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return 0, 0, false
	}

	records, err := s.backend.GetAvailability(r.Context(), stylistID)
	if err != nil {
		s.logger.Error().Err(err).Int64("stylist_id", stylistID).Msg("admin availability")
		writeDomainError(w, err)
		return 0, 0, false
	}
	for _, rec := range records {
		if rec.ID == recordID {
			return stylistID, recordID, true
		}
	}
	writeError(w, http.StatusNotFound, "availability record not found")
	return 0, 0, false
}

// handleAdminAppointments lists appointments. Stylists only see their own.
// GET /api/admin/appointments?stylist_id=N
func (s *Server) handleAdminAppointments(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var stylistID int64
	if raw := r.URL.Query().Get("stylist_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid stylist_id")
			return
		}
		stylistID = id
	}
	if !claims.Role.Allows(auth.RoleAdmin) {
		if stylistID != 0 && stylistID != claims.StylistID {
			writeError(w, http.StatusForbidden, errForbidden.Error())
			return
		}
		stylistID = claims.StylistID
	}

	appointments, err := s.backend.ListAppointments(r.Context(), stylistID)
	if err != nil {
		s.logger.Error().Err(err).Int64("stylist_id", stylistID).Msg("list appointments")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appointments})
}

// stylistParam reads {stylistID}. Stylists may only act on their own id.
func stylistParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	stylistID, err := strconv.ParseInt(chi.URLParam(r, "stylistID"), 10, 64)
	if err != nil || stylistID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid stylist id")
		return 0, false
	}
	claims, _ := auth.ClaimsFromContext(r.Context())
	if !claims.Role.Allows(auth.RoleAdmin) && claims.StylistID != stylistID {
		writeError(w, http.StatusForbidden, errForbidden.Error())
		return 0, false
	}
	return stylistID, true
}

func (s *Server) loadStylistIndex(w http.ResponseWriter, r *http.Request) (int64, schedule.Index, []error, bool) {
	stylistID, ok := stylistParam(w, r)
	if !ok {
		return 0, schedule.Index{}, nil, false
	}

	records, err := s.backend.GetAvailability(r.Context(), stylistID)
	if err != nil {
		s.logger.Error().Err(err).Int64("stylist_id", stylistID).Msg("admin availability")
		writeDomainError(w, err)
		return 0, schedule.Index{}, nil, false
	}
	idx, skipped := schedule.Shape(records)
	return stylistID, idx, skipped, true
}
