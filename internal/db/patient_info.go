package db

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PatientInfo 记录患者的入院信息，与 User 一对一
type PatientInfo struct {
	ID                string `gorm:"primaryKey;size:36" json:"id"`
	UserID            string `gorm:"uniqueIndex;not null;size:36" json:"user_id"`
	DOB               string `gorm:"column:dob" json:"dob"`
	ContactNumber     string `json:"contact_number"`
	PrimarySubstance  string `json:"primary_substance"`
	UsageDuration     string `json:"usage_duration"`
	PreviousTreatment string `json:"previous_treatment"`
	PrimaryGoal       string `json:"primary_goal"`
	SpecificGoals     string `json:"specific_goals"`
	SupportSystem     string `json:"support_system"`
}

// TableName 沿用 patient_info 表名
func (PatientInfo) TableName() string {
	return "patient_info"
}

func (p *PatientInfo) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
