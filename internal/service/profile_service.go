package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/revivewell/internal/db"
	"gorm.io/gorm"
)

// ProfileService 维护用户资料与患者入院信息
// 非患者角色永远不会产生 patient_info 记录
type ProfileService struct {
	db    *gorm.DB
	users *UserService
}

// NewProfileService 构造 ProfileService
func NewProfileService(gdb *gorm.DB, users *UserService) *ProfileService {
	return &ProfileService{db: gdb, users: users}
}

// Profile 汇总用户基本信息与可选的患者信息
type Profile struct {
	User    db.User
	Patient *db.PatientInfo
}

// PatientFields 描述可部分更新的患者字段，nil 表示请求中未提供
type PatientFields struct {
	DOB               *string
	ContactNumber     *string
	PrimarySubstance  *string
	UsageDuration     *string
	PreviousTreatment *string
	PrimaryGoal       *string
	SpecificGoals     *string
	SupportSystem     *string
}

// ProfileUpdate 描述 PUT /profile 的输入
type ProfileUpdate struct {
	Name    *string
	Patient PatientFields
}

// IntakeForm 描述新用户表单，缺失字段按空字符串写入
type IntakeForm struct {
	DOB               string
	ContactNumber     string
	PrimarySubstance  string
	UsageDuration     string
	PreviousTreatment string
	PrimaryGoal       string
	SpecificGoals     string
	SupportSystem     string
}

// Get 返回当前用户资料，仅患者会附带 patient_info
func (s *ProfileService) Get(ctx context.Context, user db.User) (*Profile, error) {
	profile := &Profile{User: user}
	if user.UserType != db.RolePatient {
		return profile, nil
	}

	info, err := s.findPatientInfo(s.db.WithContext(ctx), user.ID)
	if err != nil {
		return nil, err
	}
	profile.Patient = info
	return profile, nil
}

// Update 修改用户名及患者字段；请求中未出现的字段保持不变
func (s *ProfileService) Update(ctx context.Context, user db.User, input ProfileUpdate) error {
	if input.Name != nil {
		if err := s.users.UpdateName(ctx, user.ID, *input.Name); err != nil {
			return err
		}
	}

	if user.UserType != db.RolePatient {
		return nil
	}

	columns := input.Patient.columns()
	if len(columns) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.findPatientInfo(tx, user.ID)
		if err != nil {
			return err
		}

		if existing != nil {
			if err := tx.Model(&db.PatientInfo{}).Where("user_id = ?", user.ID).Updates(columns).Error; err != nil {
				return fmt.Errorf("update patient info: %w", err)
			}
			return nil
		}

		info := db.PatientInfo{UserID: user.ID}
		input.Patient.applyTo(&info)
		if err := tx.Create(&info).Error; err != nil {
			return fmt.Errorf("create patient info: %w", err)
		}
		return nil
	})
}

// SubmitIntake 保存新用户表单，仅患者可提交；已有记录时整体覆盖
func (s *ProfileService) SubmitIntake(ctx context.Context, user db.User, form IntakeForm) (*db.PatientInfo, error) {
	if user.UserType != db.RolePatient {
		return nil, fmt.Errorf("%w: only patients can submit this form", ErrForbidden)
	}

	var saved db.PatientInfo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.findPatientInfo(tx, user.ID)
		if err != nil {
			return err
		}

		info := db.PatientInfo{UserID: user.ID}
		if existing != nil {
			info.ID = existing.ID
		}
		form.applyTo(&info)

		if existing != nil {
			if err := tx.Save(&info).Error; err != nil {
				return fmt.Errorf("overwrite patient info: %w", err)
			}
		} else if err := tx.Create(&info).Error; err != nil {
			return fmt.Errorf("create patient info: %w", err)
		}

		saved = info
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// 通过 users 连接读取，孤立的 patient_info 不会被返回
func (s *ProfileService) findPatientInfo(tx *gorm.DB, userID string) (*db.PatientInfo, error) {
	var info db.PatientInfo
	err := tx.Model(&db.PatientInfo{}).
		Joins("JOIN users ON users.id = patient_info.user_id").
		Where("patient_info.user_id = ?", userID).
		First(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find patient info: %w", err)
	}
	return &info, nil
}

func (f PatientFields) columns() map[string]interface{} {
	columns := make(map[string]interface{})
	set := func(column string, value *string) {
		if value != nil {
			columns[column] = *value
		}
	}
	set("dob", f.DOB)
	set("contact_number", f.ContactNumber)
	set("primary_substance", f.PrimarySubstance)
	set("usage_duration", f.UsageDuration)
	set("previous_treatment", f.PreviousTreatment)
	set("primary_goal", f.PrimaryGoal)
	set("specific_goals", f.SpecificGoals)
	set("support_system", f.SupportSystem)
	return columns
}

func (f PatientFields) applyTo(info *db.PatientInfo) {
	assign := func(dst *string, value *string) {
		if value != nil {
			*dst = *value
		}
	}
	assign(&info.DOB, f.DOB)
	assign(&info.ContactNumber, f.ContactNumber)
	assign(&info.PrimarySubstance, f.PrimarySubstance)
	assign(&info.UsageDuration, f.UsageDuration)
	assign(&info.PreviousTreatment, f.PreviousTreatment)
	assign(&info.PrimaryGoal, f.PrimaryGoal)
	assign(&info.SpecificGoals, f.SpecificGoals)
	assign(&info.SupportSystem, f.SupportSystem)
}

func (f IntakeForm) applyTo(info *db.PatientInfo) {
	info.DOB = f.DOB
	info.ContactNumber = f.ContactNumber
	info.PrimarySubstance = f.PrimarySubstance
	info.UsageDuration = f.UsageDuration
	info.PreviousTreatment = f.PreviousTreatment
	info.PrimaryGoal = f.PrimaryGoal
	info.SpecificGoals = f.SpecificGoals
	info.SupportSystem = f.SupportSystem
}
