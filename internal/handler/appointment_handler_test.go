package handler

import (
	"net/http"
	"testing"

	"github.com/revivewell/internal/db"
)

func TestCreateAppointmentStatuses(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	patient := seedAccount(t, api, "patient", db.RolePatient)
	doctor := seedAccount(t, api, "doctor", db.RoleDoctor)
	outsider := seedAccount(t, api, "outsider", db.RolePatient)

	valid := map[string]any{
		"patientId": patient.ID, "providerId": doctor.ID,
		"date": "2026-05-01", "time": "10:00", "type": "therapy",
	}

	tests := []struct {
		name    string
		actor   db.User
		payload map[string]any
		status  int
		message string
	}{
		{name: "created", actor: patient, payload: valid, status: http.StatusCreated},
		{name: "missing date", actor: patient, payload: map[string]any{"patientId": patient.ID, "providerId": doctor.ID, "time": "10:00", "type": "therapy"}, status: http.StatusBadRequest, message: "Missing required field: date"},
		{name: "bad date format", actor: patient, payload: map[string]any{"patientId": patient.ID, "providerId": doctor.ID, "date": "05/01/2026", "time": "10:00", "type": "therapy"}, status: http.StatusBadRequest, message: "Date must be YYYY-MM-DD"},
		{name: "unknown provider", actor: patient, payload: map[string]any{"patientId": patient.ID, "providerId": "ghost", "date": "2026-05-01", "time": "10:00", "type": "therapy"}, status: http.StatusNotFound, message: "Patient or provider not found"},
		{name: "not a party", actor: outsider, payload: valid, status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newJSONContext(http.MethodPost, "/api/appointments", tt.payload)
			asUser(c, tt.actor)
			api.CreateAppointment(c)

			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if tt.message != "" {
				if got := errorMessage(t, w); got != tt.message {
					t.Fatalf("expected message %q, got %q", tt.message, got)
				}
			}
		})
	}

	var count int64
	api.DB().Model(&db.Appointment{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one appointment, got %d", count)
	}
}

func TestListAppointmentsByRole(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	patient := seedAccount(t, api, "patient", db.RolePatient)
	doctor := seedAccount(t, api, "doctor", db.RoleDoctor)

	c, w := newJSONContext(http.MethodPost, "/api/appointments", map[string]any{
		"patientId": patient.ID, "providerId": doctor.ID,
		"date": "2026-05-01", "time": "10:00", "type": "therapy",
	})
	asUser(c, doctor)
	api.CreateAppointment(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	c, w = newJSONContext(http.MethodGet, "/api/appointments", nil)
	asUser(c, patient)
	api.ListAppointments(c)

	var records []map[string]any
	decodeJSON(t, w, &records)
	if len(records) != 1 || records[0]["provider_name"] != "doctor" || records[0]["status"] != "scheduled" {
		t.Fatalf("unexpected patient view %#v", records)
	}

	c, w = newJSONContext(http.MethodGet, "/api/appointments", nil)
	asUser(c, seedAccount(t, api, "other", db.RoleCounselor))
	api.ListAppointments(c)
	if w.Body.String() != "[]" {
		t.Fatalf("expected empty list for unrelated clinician, got %s", w.Body.String())
	}
}
