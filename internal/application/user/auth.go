package user

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/logger"
)

// SessionStore 会话与Token黑名单（redis.SessionStore / redis.NopSessionStore实现）
type SessionStore interface {
	SaveSession(ctx context.Context, sess redis.Session, ttl time.Duration) error
	GetSession(ctx context.Context, userID uint) (*redis.Session, error)
	DeleteSession(ctx context.Context, userID uint) error
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthUseCases 注册、登录、登出、刷新Token
// 设计说明：
// 1. 邮箱统一小写，唯一性由数据库唯一索引保证
// 2. 邮箱不存在和密码错误返回同一个错误，不暴露邮箱是否注册
// 3. 会话写入失败不影响登录，只记录日志
// 4. 登出时access token和会话中的refresh token都进黑名单，已登出的refresh token不能再换发
type AuthUseCases struct {
	userRepo user.Repository
	hasher   *user.PasswordHasher
	tokens   *jwt.Manager
	sessions SessionStore
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthUseCases 创建认证用例
func NewAuthUseCases(
	userRepo user.Repository,
	hasher *user.PasswordHasher,
	tokens *jwt.Manager,
	sessions SessionStore,
	log zerolog.Logger,
) *AuthUseCases {
	return &AuthUseCases{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
}

// =========================================
// 应用层DTO
// =========================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email     string
	Password  string
	ClientIP  string
	UserAgent string
}

// UserInfo 用户信息（不含密码）
type UserInfo struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	User UserInfo `json:"user"`
	*jwt.TokenPair
}

// RefreshResponse 刷新Token响应
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func toUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Register 注册并直接签发Token
func (uc *AuthUseCases) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	exists, err := uc.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, uc.logInternal(ctx, err, "查询邮箱失败")
	}
	if exists {
		return nil, user.ErrEmailDuplicate
	}

	hashed, err := uc.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := user.NewUser(req.Username, req.Email, hashed)
	// 并发注册同一邮箱时，唯一索引兜底返回ErrEmailDuplicate
	if err := uc.userRepo.Create(ctx, u); err != nil {
		return nil, uc.logInternal(ctx, err, "创建用户失败")
	}

	logger.FromContext(ctx, uc.log).Info().Uint("user_id", u.ID).Msg("用户注册成功")
	return uc.issue(ctx, u, "", "")
}

// Login 邮箱密码登录
func (uc *AuthUseCases) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := uc.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, uc.logInternal(ctx, err, "查询用户失败")
	}
	if err := uc.hasher.Compare(u.Password, req.Password); err != nil {
		return nil, uc.logInternal(ctx, err, "验证密码失败")
	}
	return uc.issue(ctx, u, req.ClientIP, req.UserAgent)
}

// Me 当前用户信息
func (uc *AuthUseCases) Me(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, uc.logInternal(ctx, err, "查询用户失败")
	}
	info := toUserInfo(u)
	return &info, nil
}

// Logout 删除会话，把当前access token和会话中的refresh token加入黑名单
func (uc *AuthUseCases) Logout(ctx context.Context, claims *jwt.Claims) error {
	sess, err := uc.sessions.GetSession(ctx, claims.UserID)
	switch {
	case err == nil:
		if sess.RefreshTokenID != "" {
			if err := uc.sessions.Revoke(ctx, sess.RefreshTokenID, uc.tokens.RefreshTokenExpire()); err != nil {
				return uc.logInternal(ctx, err, "Refresh Token加入黑名单失败")
			}
		}
	case !errors.Is(err, apperrors.ErrUnauthorized):
		return uc.logInternal(ctx, err, "获取会话失败")
	}

	if err := uc.sessions.DeleteSession(ctx, claims.UserID); err != nil {
		return uc.logInternal(ctx, err, "删除会话失败")
	}
	if err := uc.sessions.Revoke(ctx, claims.ID, claims.TTL(uc.now())); err != nil {
		return uc.logInternal(ctx, err, "Token加入黑名单失败")
	}
	return nil
}

// Refresh 用Refresh Token换发Access Token，黑名单中的refresh token返回ErrInvalidToken
func (uc *AuthUseCases) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	revoked, err := uc.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, uc.logInternal(ctx, err, "检查黑名单失败")
	}
	if revoked {
		return nil, apperrors.ErrInvalidToken.WithMessage("Token已失效，请重新登录")
	}

	u, err := uc.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, uc.logInternal(ctx, err, "查询用户失败")
	}

	access, err := uc.tokens.RefreshAccessToken(refreshToken, u.Email, u.Username)
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{AccessToken: access, TokenType: "Bearer"}, nil
}

// issue 签发Token对并保存会话
func (uc *AuthUseCases) issue(ctx context.Context, u *user.User, clientIP, userAgent string) (*AuthResponse, error) {
	pair, err := uc.tokens.GenerateToken(u.ID, u.Email, u.Username)
	if err != nil {
		return nil, uc.logInternal(ctx, err, "签发Token失败")
	}

	sess := redis.Session{
		UserID:    u.ID,
		Email:     u.Email,
		LoginAt:   uc.now(),
		ClientIP:  clientIP,
		UserAgent: userAgent,
	}
	if claims, err := uc.tokens.ParseAccessToken(pair.AccessToken); err == nil {
		sess.TokenID = claims.ID
	}
	if claims, err := uc.tokens.ParseRefreshToken(pair.RefreshToken); err == nil {
		sess.RefreshTokenID = claims.ID
	}
	if err := uc.sessions.SaveSession(ctx, sess, uc.tokens.RefreshTokenExpire()); err != nil {
		logger.FromContext(ctx, uc.log).Warn().Err(err).Uint("user_id", u.ID).Msg("保存会话失败")
	}

	return &AuthResponse{User: toUserInfo(u), TokenPair: pair}, nil
}

func (uc *AuthUseCases) logInternal(ctx context.Context, err error, msg string) error {
	if apperrors.IsInternal(err) {
		logger.FromContext(ctx, uc.log).Error().Err(err).Msg(msg)
	}
	return err
}
