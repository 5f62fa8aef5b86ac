package db

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyCheckin 记录每日打卡，只追加不修改
type DailyCheckin struct {
	ID                   string    `gorm:"primaryKey;size:36" json:"id"`
	UserID               string    `gorm:"not null;index;size:36" json:"user_id"`
	Mood                 *int      `json:"mood"`
	Cravings             *int      `json:"cravings"`
	Challenges           string    `json:"challenges"`
	Goals                string    `json:"goals"`
	NeedCounselor        bool      `gorm:"default:false" json:"need_counselor"`
	NeedSupportGroup     bool      `gorm:"default:false" json:"need_support_group"`
	NeedEmergencyContact bool      `gorm:"default:false" json:"need_emergency_contact"`
	CreatedAt            time.Time `gorm:"index" json:"created_at"`
}

func (d *DailyCheckin) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(d.ID) == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
