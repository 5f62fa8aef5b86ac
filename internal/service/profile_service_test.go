package service

import (
	"errors"
	"testing"

	"github.com/revivewell/internal/db"
)

func newProfileTestService(t *testing.T) (*ProfileService, *UserService) {
	t.Helper()
	gdb := setupServiceTestDB(t)
	users := NewUserService(gdb)
	return NewProfileService(gdb, users), users
}

func TestProfileUpdateCreatesRowThenPartiallyUpdates(t *testing.T) {
	svc, _ := newProfileTestService(t)
	patient := seedUser(t, svc.db, "patient", db.RolePatient)

	err := svc.Update(bg, patient, ProfileUpdate{Patient: PatientFields{
		DOB:           strPtr("1990-01-01"),
		ContactNumber: strPtr("555-0100"),
		PrimaryGoal:   strPtr("stay sober"),
	}})
	if err != nil {
		t.Fatalf("initial update failed: %v", err)
	}

	if err := svc.Update(bg, patient, ProfileUpdate{Patient: PatientFields{DOB: strPtr("1991-02-02")}}); err != nil {
		t.Fatalf("partial update failed: %v", err)
	}

	profile, err := svc.Get(bg, patient)
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if profile.Patient == nil {
		t.Fatal("expected patient info to exist")
	}
	if profile.Patient.DOB != "1991-02-02" {
		t.Fatalf("expected dob to be updated, got %q", profile.Patient.DOB)
	}
	if profile.Patient.ContactNumber != "555-0100" || profile.Patient.PrimaryGoal != "stay sober" {
		t.Fatalf("absent fields must stay untouched: %#v", profile.Patient)
	}

	var count int64
	svc.db.Model(&db.PatientInfo{}).Where("user_id = ?", patient.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single patient info row, got %d", count)
	}
}

func TestProfileUpdateRenamesWithoutTouchingPatientInfo(t *testing.T) {
	svc, users := newProfileTestService(t)
	patient := seedUser(t, svc.db, "patient", db.RolePatient)

	if err := svc.Update(bg, patient, ProfileUpdate{Name: strPtr("Renamed")}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stored, err := users.FindByID(bg, patient.ID)
	if err != nil {
		t.Fatalf("find user failed: %v", err)
	}
	if stored.Name != "Renamed" {
		t.Fatalf("expected rename, got %q", stored.Name)
	}

	var count int64
	svc.db.Model(&db.PatientInfo{}).Count(&count)
	if count != 0 {
		t.Fatalf("rename alone must not create patient info, got %d rows", count)
	}
}

func TestProfileUpdateNeverCreatesPatientInfoForClinician(t *testing.T) {
	svc, _ := newProfileTestService(t)
	doctor := seedUser(t, svc.db, "doctor", db.RoleDoctor)

	if err := svc.Update(bg, doctor, ProfileUpdate{Patient: PatientFields{DOB: strPtr("1980-01-01")}}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	profile, err := svc.Get(bg, doctor)
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if profile.Patient != nil {
		t.Fatal("clinician must not have patient info")
	}

	var count int64
	svc.db.Model(&db.PatientInfo{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no patient info rows, got %d", count)
	}
}

func TestSubmitIntakeForbiddenForClinician(t *testing.T) {
	svc, _ := newProfileTestService(t)
	counselor := seedUser(t, svc.db, "counselor", db.RoleCounselor)

	if _, err := svc.SubmitIntake(bg, counselor, IntakeForm{DOB: "1980-01-01"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSubmitIntakeOverwritesExistingRow(t *testing.T) {
	svc, _ := newProfileTestService(t)
	patient := seedUser(t, svc.db, "patient", db.RolePatient)

	first, err := svc.SubmitIntake(bg, patient, IntakeForm{DOB: "1990-01-01", ContactNumber: "1", SupportSystem: "family"})
	if err != nil {
		t.Fatalf("first intake failed: %v", err)
	}
	second, err := svc.SubmitIntake(bg, patient, IntakeForm{DOB: "1990-01-02"})
	if err != nil {
		t.Fatalf("second intake failed: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected the same row to be overwritten, got %s and %s", first.ID, second.ID)
	}

	profile, err := svc.Get(bg, patient)
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if profile.Patient.DOB != "1990-01-02" || profile.Patient.SupportSystem != "" {
		t.Fatalf("intake form must write every field: %#v", profile.Patient)
	}
}

func TestProfileIgnoresOrphanedPatientInfo(t *testing.T) {
	svc, _ := newProfileTestService(t)
	ghost := db.User{ID: "ghost", UserType: db.RolePatient}

	if err := svc.db.Create(&db.PatientInfo{UserID: ghost.ID, DOB: "2000-01-01"}).Error; err != nil {
		t.Fatalf("seed orphan failed: %v", err)
	}

	profile, err := svc.Get(bg, ghost)
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if profile.Patient != nil {
		t.Fatalf("orphaned patient info must not be readable: %#v", profile.Patient)
	}
}
