package service

import (
	"context"
	"fmt"
	"time"

	"github.com/revivewell/internal/db"
	"gorm.io/gorm"
)

// 仪表盘中的占位数值，并非真实统计
const (
	placeholderProgress      = 75
	placeholderCriticalCases = 3
	placeholderRiskLevel     = "Low"

	dashboardRecentCheckins = 7
	dashboardPatientLimit   = 10
)

// DashboardService 聚合仪表盘数据
type DashboardService struct {
	db           *gorm.DB
	users        *UserService
	checkins     *CheckinService
	appointments *AppointmentService
	now          func() time.Time
}

// PatientDashboard 是患者视角的仪表盘
type PatientDashboard struct {
	Progress        int                `json:"progress"`
	NextAppointment *AppointmentRecord `json:"nextAppointment"`
	RecentCheckins  []db.DailyCheckin  `json:"recentCheckins"`
}

// PatientSummary 是临床视角患者列表中的一项
type PatientSummary struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	LastCheckin     *time.Time `json:"last_checkin"`
	RiskLevel       string     `json:"risk_level"`
	NextAppointment *string    `json:"next_appointment"`
}

// ClinicianDashboard 是临床视角的仪表盘
type ClinicianDashboard struct {
	TotalPatients     int64            `json:"totalPatients"`
	CriticalCases     int              `json:"criticalCases"`
	TodayAppointments int64            `json:"todayAppointments"`
	Patients          []PatientSummary `json:"patients"`
}

// DashboardStats 二选一，取决于当前用户角色
type DashboardStats struct {
	Patient   *PatientDashboard
	Clinician *ClinicianDashboard
}

// NewDashboardService 构造 DashboardService
func NewDashboardService(gdb *gorm.DB, users *UserService, checkins *CheckinService, appointments *AppointmentService) *DashboardService {
	return &DashboardService{
		db:           gdb,
		users:        users,
		checkins:     checkins,
		appointments: appointments,
		now:          time.Now,
	}
}

// SetClock 覆盖时间来源，主要用于测试。
func (s *DashboardService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Stats 按角色返回仪表盘数据
func (s *DashboardService) Stats(ctx context.Context, user db.User) (*DashboardStats, error) {
	today := s.now().UTC().Format("2006-01-02")

	switch {
	case user.UserType == db.RolePatient:
		dashboard, err := s.patientStats(ctx, user, today)
		if err != nil {
			return nil, err
		}
		return &DashboardStats{Patient: dashboard}, nil
	case user.IsClinician():
		dashboard, err := s.clinicianStats(ctx, user, today)
		if err != nil {
			return nil, err
		}
		return &DashboardStats{Clinician: dashboard}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported role %q", ErrForbidden, user.UserType)
	}
}

func (s *DashboardService) patientStats(ctx context.Context, user db.User, today string) (*PatientDashboard, error) {
	next, err := s.appointments.NextForPatient(ctx, user.ID, today)
	if err != nil {
		return nil, err
	}

	recent, err := s.checkins.Recent(ctx, user.ID, dashboardRecentCheckins)
	if err != nil {
		return nil, err
	}

	return &PatientDashboard{
		Progress:        placeholderProgress,
		NextAppointment: next,
		RecentCheckins:  recent,
	}, nil
}

func (s *DashboardService) clinicianStats(ctx context.Context, user db.User, today string) (*ClinicianDashboard, error) {
	total, err := s.users.CountByRole(ctx, db.RolePatient)
	if err != nil {
		return nil, err
	}

	todayCount, err := s.appointments.CountForProviderOn(ctx, user.ID, today)
	if err != nil {
		return nil, err
	}

	var patients []db.User
	err = s.db.WithContext(ctx).
		Where("user_type = ?", db.RolePatient).
		Order("created_at ASC").
		Limit(dashboardPatientLimit).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	summaries := make([]PatientSummary, 0, len(patients))
	for _, patient := range patients {
		lastCheckin, err := s.checkins.LatestAt(ctx, patient.ID)
		if err != nil {
			return nil, err
		}
		nextDate, err := s.appointments.NextDateForPatient(ctx, patient.ID, today)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, PatientSummary{
			ID:              patient.ID,
			Name:            patient.Name,
			LastCheckin:     lastCheckin,
			RiskLevel:       placeholderRiskLevel,
			NextAppointment: nextDate,
		})
	}

	return &ClinicianDashboard{
		TotalPatients:     total,
		CriticalCases:     placeholderCriticalCases,
		TodayAppointments: todayCount,
		Patients:          summaries,
	}, nil
}
