package db

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 角色取值，注册时只接受以下三种
const (
	RolePatient   = "patient"
	RoleCounselor = "counselor"
	RoleDoctor    = "doctor"
)

// User 定义了用户模型，Password 仅保存 bcrypt 哈希
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	UserType  string    `gorm:"not null;index" json:"userType"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate 为新用户生成 UUID 主键
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(u.ID) == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsClinician 判断是否为咨询师或医生
func (u User) IsClinician() bool {
	return u.UserType == RoleCounselor || u.UserType == RoleDoctor
}

// ValidRole 判断角色是否在允许的集合内
func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleCounselor, RoleDoctor:
		return true
	default:
		return false
	}
}
