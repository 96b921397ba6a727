package redis

import (
	"context"
	"time"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// NopSessionStore redis.enabled=false时使用
// 不保存会话，黑名单永远为空（登出后access token和refresh token在过期前仍然有效）
type NopSessionStore struct{}

func (NopSessionStore) SaveSession(context.Context, Session, time.Duration) error { return nil }

func (NopSessionStore) GetSession(context.Context, uint) (*Session, error) {
	return nil, apperrors.ErrUnauthorized
}

func (NopSessionStore) DeleteSession(context.Context, uint) error { return nil }

func (NopSessionStore) Revoke(context.Context, string, time.Duration) error { return nil }

func (NopSessionStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }
