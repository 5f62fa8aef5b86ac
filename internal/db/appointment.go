package db

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatusScheduled 是新建预约的默认状态
const AppointmentStatusScheduled = "scheduled"

// Appointment 定义了预约模型
// Date 使用 YYYY-MM-DD，Time 使用 HH:MM，字符串排序即时间顺序
type Appointment struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	PatientID  string `gorm:"not null;index;size:36" json:"patient_id"`
	ProviderID string `gorm:"not null;index;size:36" json:"provider_id"`
	Date       string `gorm:"not null;index" json:"date"`
	Time       string `gorm:"not null" json:"time"`
	Type       string `gorm:"not null" json:"type"`
	Status     string `gorm:"default:scheduled" json:"status"`
	Notes      string `json:"notes"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(a.ID) == "" {
		a.ID = uuid.NewString()
	}
	if strings.TrimSpace(a.Status) == "" {
		a.Status = AppointmentStatusScheduled
	}
	return nil
}
