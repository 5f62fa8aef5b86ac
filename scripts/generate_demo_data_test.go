package main

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

func setupDemoSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(fmt.Sprintf("file:demo-seed-%s?mode=memory&cache=shared", uuid.NewString()), logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestSeedDemoDataPopulatesEmptyDatabase(t *testing.T) {
	gdb := setupDemoSeedTestDB(t)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	summary, err := seedDemoData(context.Background(), gdb, "demo-pass", now)
	if err != nil {
		t.Fatalf("seedDemoData returned error: %v", err)
	}
	if summary.skipped {
		t.Fatalf("expected seeding on an empty database")
	}
	if len(summary.accounts) != len(demoAccounts) {
		t.Fatalf("expected %d accounts, got %d", len(demoAccounts), len(summary.accounts))
	}

	var checkins, appointments, messages, infos int64
	gdb.Model(&db.DailyCheckin{}).Count(&checkins)
	gdb.Model(&db.Appointment{}).Count(&appointments)
	gdb.Model(&db.Message{}).Count(&messages)
	gdb.Model(&db.PatientInfo{}).Count(&infos)

	if checkins != 14 || appointments != 4 || messages != 2 || infos != 2 {
		t.Fatalf("unexpected counts: checkins=%d appointments=%d messages=%d infos=%d", checkins, appointments, messages, infos)
	}

	var latest db.DailyCheckin
	if err := gdb.Order("created_at desc").First(&latest).Error; err != nil {
		t.Fatalf("failed to load latest checkin: %v", err)
	}
	if !latest.CreatedAt.Equal(now) {
		t.Fatalf("expected latest checkin at %v, got %v", now, latest.CreatedAt)
	}
}

func TestSeedDemoDataSkipsWhenUsersExist(t *testing.T) {
	gdb := setupDemoSeedTestDB(t)
	if err := gdb.Create(&db.User{Name: "existing", Email: "existing@example.com", Password: "x", UserType: db.RolePatient}).Error; err != nil {
		t.Fatalf("failed to seed existing user: %v", err)
	}

	summary, err := seedDemoData(context.Background(), gdb, "demo-pass", time.Now())
	if err != nil {
		t.Fatalf("seedDemoData returned error: %v", err)
	}
	if !summary.skipped {
		t.Fatalf("expected seeding to be skipped")
	}

	var count int64
	gdb.Model(&db.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected existing data untouched, got %d users", count)
	}
}
