package handler

import (
	"net/http"
	"testing"

	"github.com/revivewell/internal/db"
)

func TestGetProfileMergesPatientInfo(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	patient := seedAccount(t, api, "patient", db.RolePatient)

	c, w := newJSONContext(http.MethodPost, "/api/new-user-form", map[string]any{
		"dob": "1990-01-01", "contactNumber": "555", "primaryGoal": "sobriety",
	})
	asUser(c, patient)
	api.SubmitNewUserForm(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	c, w = newJSONContext(http.MethodGet, "/api/profile", nil)
	asUser(c, patient)
	api.GetProfile(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body map[string]any
	decodeJSON(t, w, &body)
	if body["id"] != patient.ID || body["userType"] != "patient" || body["email"] != patient.Email {
		t.Fatalf("unexpected account fields %#v", body)
	}
	if body["dob"] != "1990-01-01" || body["contact_number"] != "555" || body["primary_goal"] != "sobriety" {
		t.Fatalf("unexpected patient fields %#v", body)
	}
	if body["support_system"] != "" {
		t.Fatalf("absent intake fields must be empty strings, got %#v", body["support_system"])
	}
}

func TestGetProfileClinicianHasNoPatientFields(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	doctor := seedAccount(t, api, "doctor", db.RoleDoctor)

	c, w := newJSONContext(http.MethodGet, "/api/profile", nil)
	asUser(c, doctor)
	api.GetProfile(c)

	var body map[string]any
	decodeJSON(t, w, &body)
	if len(body) != 4 {
		t.Fatalf("expected only account fields, got %#v", body)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	patient := seedAccount(t, api, "patient", db.RolePatient)

	c, w := newJSONContext(http.MethodPut, "/api/profile", map[string]any{"name": "Renamed", "dob": "1990-01-01", "contact_number": "555"})
	asUser(c, patient)
	api.UpdateProfile(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	c, w = newJSONContext(http.MethodPut, "/api/profile", map[string]any{"dob": "1991-01-01"})
	asUser(c, patient)
	api.UpdateProfile(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	stored, err := api.users.FindByID(c.Request.Context(), patient.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	c, w = newJSONContext(http.MethodGet, "/api/profile", nil)
	asUser(c, *stored)
	api.GetProfile(c)

	var body map[string]any
	decodeJSON(t, w, &body)
	if body["name"] != "Renamed" || body["dob"] != "1991-01-01" || body["contact_number"] != "555" {
		t.Fatalf("unexpected profile after partial update %#v", body)
	}
}

func TestSubmitNewUserFormForbiddenForClinician(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	counselor := seedAccount(t, api, "counselor", db.RoleCounselor)

	c, w := newJSONContext(http.MethodPost, "/api/new-user-form", map[string]any{"dob": "1990-01-01"})
	asUser(c, counselor)
	api.SubmitNewUserForm(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
	if got := errorMessage(t, w); got != "Only patients can submit this form" {
		t.Fatalf("unexpected message %q", got)
	}
}
