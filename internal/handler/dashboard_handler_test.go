package handler

import (
	"net/http"
	"testing"

	"github.com/revivewell/internal/db"
)

func TestDashboardStatsByRole(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	patient := seedAccount(t, api, "patient", db.RolePatient)
	doctor := seedAccount(t, api, "doctor", db.RoleDoctor)

	c, w := newJSONContext(http.MethodGet, "/api/dashboard-stats", nil)
	asUser(c, patient)
	api.DashboardStats(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var patientView map[string]any
	decodeJSON(t, w, &patientView)
	if patientView["progress"] != float64(75) || patientView["nextAppointment"] != nil {
		t.Fatalf("unexpected patient dashboard %#v", patientView)
	}
	if _, ok := patientView["recentCheckins"]; !ok {
		t.Fatalf("expected recentCheckins key, got %#v", patientView)
	}

	c, w = newJSONContext(http.MethodGet, "/api/dashboard-stats", nil)
	asUser(c, doctor)
	api.DashboardStats(c)
	var clinicianView map[string]any
	decodeJSON(t, w, &clinicianView)
	if clinicianView["totalPatients"] != float64(1) || clinicianView["criticalCases"] != float64(3) {
		t.Fatalf("unexpected clinician dashboard %#v", clinicianView)
	}
	patients, _ := clinicianView["patients"].([]any)
	if len(patients) != 1 {
		t.Fatalf("expected one patient summary, got %#v", clinicianView["patients"])
	}
}

func TestDashboardStatsUnknownRole(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newJSONContext(http.MethodGet, "/api/dashboard-stats", nil)
	asUser(c, db.User{ID: "x", UserType: "admin"})
	api.DashboardStats(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}
