package service

import "errors"

var (
	// ErrInvalidInput 在必填字段缺失或取值非法时返回
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict 在唯一约束冲突（如邮箱已注册）时返回
	ErrConflict = errors.New("conflict")
	// ErrNotFound 在引用的记录不存在时返回
	ErrNotFound = errors.New("not found")
	// ErrForbidden 在身份有效但角色或归属不允许时返回
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials 在邮箱不存在或密码错误时返回，两者对调用方不可区分
	ErrInvalidCredentials = errors.New("invalid email or password")
)
