package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Session 登录会话
type Session struct {
	UserID    uint
	Email     string
	TokenID        string // 当前access token的jti
	RefreshTokenID string // 当前refresh token的jti，登出时一并加入黑名单
	LoginAt   time.Time
	ClientIP  string
	UserAgent string
}

// SessionStore 会话存储
// 1. 登录时写入session:{user_id}，过期时间与Refresh Token一致
// 2. 登出时把access token和refresh token的jti写入blacklist:{jti}，TTL为token剩余有效期
// 3. 黑名单按jti存储，key长度固定
type SessionStore struct {
	client redis.UniversalClient
}

// NewSessionStore 创建会话存储
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("session:%d", userID)
}

func blacklistKey(tokenID string) string {
	return "blacklist:" + tokenID
}

// SaveSession 保存用户会话
// HSet和Expire放在同一个事务管道里
func (s *SessionStore) SaveSession(ctx context.Context, sess Session, ttl time.Duration) error {
	key := sessionKey(sess.UserID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"user_id":    sess.UserID,
			"email":      sess.Email,
			"token_id":   sess.TokenID,
			"refresh_id": sess.RefreshTokenID,
			"login_at":   sess.LoginAt.Unix(),
			"client_ip":  sess.ClientIP,
			"user_agent": sess.UserAgent,
		})
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return redisError(err, "保存会话失败")
	}
	return nil
}

// GetSession 获取用户会话，不存在返回ErrUnauthorized
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (*Session, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, redisError(err, "获取会话失败")
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}

	sess := &Session{
		UserID:         userID,
		Email:          result["email"],
		TokenID:        result["token_id"],
		RefreshTokenID: result["refresh_id"],
		ClientIP:       result["client_ip"],
		UserAgent:      result["user_agent"],
	}
	if loginAt, err := strconv.ParseInt(result["login_at"], 10, 64); err == nil {
		sess.LoginAt = time.Unix(loginAt, 0)
	}
	return sess, nil
}

// DeleteSession 删除用户会话（用于登出）
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return redisError(err, "删除会话失败")
	}
	return nil
}

// Revoke 将Token加入黑名单，ttl<=0时说明token已过期，不需要记录
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, blacklistKey(tokenID), "revoked", ttl).Err(); err != nil {
		return redisError(err, "添加Token到黑名单失败")
	}
	return nil
}

// IsRevoked 检查Token是否在黑名单中
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistKey(tokenID)).Result()
	if err != nil {
		return false, redisError(err, "检查黑名单失败")
	}
	return exists > 0, nil
}

// redisError Redis命令失败，错误码为ErrCodeRedisError
func redisError(err error, message string) error {
	return apperrors.ErrRedisError.WithCause(err).WithMessage(message)
}
