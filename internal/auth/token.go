// Package auth 负责会话令牌的签发与校验，以及密码哈希。
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL 是令牌的固定有效期
const DefaultTokenTTL = 24 * time.Hour

var (
	// ErrInvalidToken 表示令牌格式错误、签名不符或缺少必要声明
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired 表示令牌已过期，属于 ErrInvalidToken 的一种
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)
	// ErrMissingToken 表示请求未携带 Bearer 令牌
	ErrMissingToken = errors.New("token is missing")
)

// Claims 为令牌载荷，user_id 绑定签发对象
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService 使用服务端密钥签发 HS256 令牌，无状态、不可续期
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService 构造 TokenService，secret 不能为空；ttl<=0 时使用 24 小时。
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// SetClock 覆盖时间来源，主要用于测试。
func (s *TokenService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// TTL 返回令牌有效期
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue 为用户签发令牌，过期时间为签发时间加有效期。
// 声明中的时间精度为秒，签发时间先截断到秒，保证 exp 与 iat 相差正好一个有效期。
func (s *TokenService) Issue(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("user id is required")
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify 校验令牌并返回其绑定的用户 ID。
// 当前时间大于等于过期时间即视为过期，不提供宽限期。
func (s *TokenService) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}

	userID := strings.TrimSpace(claims.UserID)
	if userID == "" {
		return "", fmt.Errorf("%w: user id missing", ErrInvalidToken)
	}
	return userID, nil
}

// BearerToken 从 Authorization 头中提取令牌。
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: expected bearer scheme", ErrInvalidToken)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// RandomSecret 生成进程内随机密钥，仅在未配置 TOKEN_SECRET 时使用。
func RandomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
