package service

import (
	"context"
	"fmt"
	"time"

	"github.com/revivewell/internal/config"
	"github.com/revivewell/internal/db"
	"gorm.io/gorm"
)

const (
	patientCheckinLimit   = 30
	clinicianCheckinLimit = 100
)

// CheckinService 负责每日打卡的写入与按角色查询
// scope 决定临床人员能看到全部患者还是仅自己的预约患者
type CheckinService struct {
	db    *gorm.DB
	scope string
	now   func() time.Time
}

// CheckinInput 描述一次打卡提交
type CheckinInput struct {
	Mood                 *int
	Cravings             *int
	Challenges           string
	Goals                string
	NeedCounselor        bool
	NeedSupportGroup     bool
	NeedEmergencyContact bool
}

// CheckinRecord 为列表返回项，临床视角会附带患者姓名
type CheckinRecord struct {
	db.DailyCheckin
	PatientName string `json:"patient_name,omitempty"`
}

// NewCheckinService 构造 CheckinService，scope 为空时按 config.CheckinScopeAll 处理
func NewCheckinService(gdb *gorm.DB, scope string) *CheckinService {
	if scope != config.CheckinScopeCaseload {
		scope = config.CheckinScopeAll
	}
	return &CheckinService{db: gdb, scope: scope, now: time.Now}
}

// SetClock 覆盖时间来源，主要用于测试。
func (s *CheckinService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Create 追加一条打卡记录
func (s *CheckinService) Create(ctx context.Context, user db.User, input CheckinInput) (*db.DailyCheckin, error) {
	checkin := db.DailyCheckin{
		UserID:               user.ID,
		Mood:                 input.Mood,
		Cravings:             input.Cravings,
		Challenges:           input.Challenges,
		Goals:                input.Goals,
		NeedCounselor:        input.NeedCounselor,
		NeedSupportGroup:     input.NeedSupportGroup,
		NeedEmergencyContact: input.NeedEmergencyContact,
		CreatedAt:            s.now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&checkin).Error; err != nil {
		return nil, fmt.Errorf("create checkin: %w", err)
	}
	return &checkin, nil
}

// List 按角色返回可见的打卡记录：患者仅本人最近 30 条，临床人员为患者最近 100 条
func (s *CheckinService) List(ctx context.Context, user db.User) ([]CheckinRecord, error) {
	switch {
	case user.UserType == db.RolePatient:
		checkins, err := s.Recent(ctx, user.ID, patientCheckinLimit)
		if err != nil {
			return nil, err
		}
		records := make([]CheckinRecord, 0, len(checkins))
		for _, checkin := range checkins {
			records = append(records, CheckinRecord{DailyCheckin: checkin})
		}
		return records, nil
	case user.IsClinician():
		return s.listForClinician(ctx, user)
	default:
		return nil, fmt.Errorf("%w: unsupported role %q", ErrForbidden, user.UserType)
	}
}

// Recent 返回指定用户最近的打卡记录，按时间倒序
func (s *CheckinService) Recent(ctx context.Context, userID string, limit int) ([]db.DailyCheckin, error) {
	var checkins []db.DailyCheckin
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&checkins).Error
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	return checkins, nil
}

// LatestAt 返回用户最近一次打卡时间，没有打卡时返回 nil
func (s *CheckinService) LatestAt(ctx context.Context, userID string) (*time.Time, error) {
	checkins, err := s.Recent(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(checkins) == 0 {
		return nil, nil
	}
	latest := checkins[0].CreatedAt
	return &latest, nil
}

func (s *CheckinService) listForClinician(ctx context.Context, user db.User) ([]CheckinRecord, error) {
	tx := s.db.WithContext(ctx)
	query := tx.Table("daily_checkins").
		Select("daily_checkins.*, users.name AS patient_name").
		Joins("JOIN users ON users.id = daily_checkins.user_id").
		Where("users.user_type = ?", db.RolePatient)

	if s.scope == config.CheckinScopeCaseload {
		caseload := tx.Model(&db.Appointment{}).Select("patient_id").Where("provider_id = ?", user.ID)
		query = query.Where("daily_checkins.user_id IN (?)", caseload)
	}

	var records []CheckinRecord
	if err := query.Order("daily_checkins.created_at DESC").Limit(clinicianCheckinLimit).Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("list patient checkins: %w", err)
	}
	return records, nil
}
