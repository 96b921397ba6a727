package user

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 密码长度限制（bcrypt只使用前72字节）
const (
	PasswordMinLen = 6
	PasswordMaxLen = 72
)

// PasswordHasher 密码哈希
// cost可配置：测试使用bcrypt.MinCost，生产使用bcrypt.DefaultCost以上
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher 创建哈希器，cost非法时使用bcrypt.DefaultCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash 校验长度并生成bcrypt哈希（自动加盐）
func (h *PasswordHasher) Hash(plain string) (string, error) {
	if len(plain) < PasswordMinLen || len(plain) > PasswordMaxLen {
		return "", ErrWeakPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", apperrors.Wrap(err, "密码加密失败")
	}
	return string(hashed), nil
}

// Compare 验证明文密码，不匹配返回ErrInvalidCredentials
func (h *PasswordHasher) Compare(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return apperrors.Wrap(err, "密码验证失败")
}
