package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/revivewell/internal/db"
	"gorm.io/gorm"
)

const (
	appointmentDateLayout = "2006-01-02"
	appointmentTimeLayout = "15:04"
)

// AppointmentService 负责预约的创建与按角色查询
type AppointmentService struct {
	db *gorm.DB
}

// AppointmentInput 描述创建预约的请求
type AppointmentInput struct {
	PatientID  string
	ProviderID string
	Date       string
	Time       string
	Type       string
	Notes      string
}

// AppointmentRecord 为列表返回项，附带对方姓名
type AppointmentRecord struct {
	db.Appointment
	ProviderName string `json:"provider_name,omitempty"`
	PatientName  string `json:"patient_name,omitempty"`
}

// NewAppointmentService 构造 AppointmentService
func NewAppointmentService(gdb *gorm.DB) *AppointmentService {
	return &AppointmentService{db: gdb}
}

// List 患者看到自己作为患者的预约，临床人员看到自己作为提供者的预约
func (s *AppointmentService) List(ctx context.Context, user db.User) ([]AppointmentRecord, error) {
	query := s.db.WithContext(ctx).Table("appointments")

	switch {
	case user.UserType == db.RolePatient:
		query = query.
			Select("appointments.*, users.name AS provider_name").
			Joins("JOIN users ON users.id = appointments.provider_id").
			Where("appointments.patient_id = ?", user.ID)
	case user.IsClinician():
		query = query.
			Select("appointments.*, users.name AS patient_name").
			Joins("JOIN users ON users.id = appointments.patient_id").
			Where("appointments.provider_id = ?", user.ID)
	default:
		return nil, fmt.Errorf("%w: unsupported role %q", ErrForbidden, user.UserType)
	}

	var records []AppointmentRecord
	if err := query.Order("appointments.date ASC, appointments.time ASC").Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return records, nil
}

// Create 新建预约；双方必须存在，且当前用户必须是其中一方
func (s *AppointmentService) Create(ctx context.Context, user db.User, input AppointmentInput) (*db.Appointment, error) {
	appointment := db.Appointment{
		PatientID:  strings.TrimSpace(input.PatientID),
		ProviderID: strings.TrimSpace(input.ProviderID),
		Date:       strings.TrimSpace(input.Date),
		Time:       strings.TrimSpace(input.Time),
		Type:       strings.TrimSpace(input.Type),
		Status:     db.AppointmentStatusScheduled,
		Notes:      input.Notes,
	}

	required := []struct {
		field string
		value string
	}{
		{"patientId", appointment.PatientID},
		{"providerId", appointment.ProviderID},
		{"date", appointment.Date},
		{"time", appointment.Time},
		{"type", appointment.Type},
	}
	for _, item := range required {
		if item.value == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidInput, item.field)
		}
	}

	// 日期与时间按字符串排序和比较，必须是固定宽度格式
	if _, err := time.Parse(appointmentDateLayout, appointment.Date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	clock, err := time.Parse(appointmentTimeLayout, appointment.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
	}
	appointment.Time = clock.Format(appointmentTimeLayout)

	tx := s.db.WithContext(ctx)
	for _, id := range []string{appointment.PatientID, appointment.ProviderID} {
		exists, err := userExists(tx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: patient or provider not found", ErrNotFound)
		}
	}

	if user.ID != appointment.PatientID && user.ID != appointment.ProviderID {
		return nil, fmt.Errorf("%w: not a party to this appointment", ErrForbidden)
	}

	if err := tx.Create(&appointment).Error; err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return &appointment, nil
}

// NextForPatient 返回日期不早于 today 的最近一次预约，没有时返回 nil
func (s *AppointmentService) NextForPatient(ctx context.Context, patientID, today string) (*AppointmentRecord, error) {
	var record AppointmentRecord
	err := s.db.WithContext(ctx).Table("appointments").
		Select("appointments.*, users.name AS provider_name").
		Joins("JOIN users ON users.id = appointments.provider_id").
		Where("appointments.patient_id = ? AND appointments.date >= ?", patientID, today).
		Order("appointments.date ASC, appointments.time ASC").
		Limit(1).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("next appointment: %w", err)
	}
	return &record, nil
}

// NextDateForPatient 返回患者下一次预约的日期
func (s *AppointmentService) NextDateForPatient(ctx context.Context, patientID, today string) (*string, error) {
	var next sql.NullString
	err := s.db.WithContext(ctx).Model(&db.Appointment{}).
		Select("MIN(date)").
		Where("patient_id = ? AND date >= ?", patientID, today).
		Scan(&next).Error
	if err != nil {
		return nil, fmt.Errorf("next appointment date: %w", err)
	}
	if !next.Valid {
		return nil, nil
	}
	return &next.String, nil
}

// CountForProviderOn 统计提供者在指定日期的预约数
func (s *AppointmentService) CountForProviderOn(ctx context.Context, providerID, date string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&db.Appointment{}).
		Where("provider_id = ? AND date = ?", providerID, date).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return count, nil
}

func userExists(tx *gorm.DB, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	var count int64
	if err := tx.Model(&db.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return count > 0, nil
}
