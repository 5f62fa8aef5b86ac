package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/revivewell/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.Open(dsn, logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, name, role string) db.User {
	t.Helper()
	user := db.User{
		Name:      name,
		Email:     fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Password:  "hashed",
		UserType:  role,
		CreatedAt: time.Now().UTC(),
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", name, err)
	}
	return user
}

func seedCheckin(t *testing.T, gdb *gorm.DB, userID string, at time.Time) db.DailyCheckin {
	t.Helper()
	mood := 5
	checkin := db.DailyCheckin{UserID: userID, Mood: &mood, CreatedAt: at.UTC()}
	if err := gdb.Create(&checkin).Error; err != nil {
		t.Fatalf("failed to seed checkin: %v", err)
	}
	return checkin
}

func seedAppointment(t *testing.T, gdb *gorm.DB, patientID, providerID, date, clock string) db.Appointment {
	t.Helper()
	appointment := db.Appointment{PatientID: patientID, ProviderID: providerID, Date: date, Time: clock, Type: "therapy"}
	if err := gdb.Create(&appointment).Error; err != nil {
		t.Fatalf("failed to seed appointment: %v", err)
	}
	return appointment
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func strPtr(v string) *string {
	return &v
}

func intPtr(v int) *int {
	return &v
}

var bg = context.Background()
