package db

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := Open(fmt.Sprintf("file:db-%s?mode=memory&cache=shared", uuid.NewString()), logger.Default.LogMode(logger.Silent))
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

func TestOpenCreatesAllTables(t *testing.T) {
	gdb := openTestDB(t)

	for _, model := range Models() {
		if !gdb.Migrator().HasTable(model) {
			t.Fatalf("expected table for %T", model)
		}
	}
}

func TestDuplicateEmailIsTranslated(t *testing.T) {
	gdb := openTestDB(t)

	first := User{Name: "a", Email: "same@example.com", Password: "x", UserType: RolePatient}
	if err := gdb.Create(&first).Error; err != nil {
		t.Fatalf("failed to create first user: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("expected generated id")
	}

	err := gdb.Create(&User{Name: "b", Email: "same@example.com", Password: "x", UserType: RolePatient}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}

func TestInitCreatesParentDirectory(t *testing.T) {
	previous := DB
	defer func() { DB = previous }()

	path := filepath.Join(t.TempDir(), "nested", "revivewell.db")
	if err := Init(path); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if DB == nil {
		t.Fatalf("expected global DB to be set")
	}
	if sqlDB, err := DB.DB(); err == nil {
		sqlDB.Close()
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RolePatient, RoleCounselor, RoleDoctor} {
		if !ValidRole(role) {
			t.Fatalf("expected %q to be valid", role)
		}
	}
	if ValidRole("admin") {
		t.Fatalf("admin must not be a valid role")
	}
}
