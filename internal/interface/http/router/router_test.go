package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/messaging"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/rdb/rdbtest"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// memoryStore 内存版会话和黑名单
type memoryStore struct {
	mu       sync.Mutex
	sessions map[uint]redis.Session
	revoked  map[string]bool
}

func (s *memoryStore) SaveSession(_ context.Context, sess redis.Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
	return nil
}

func (s *memoryStore) GetSession(_ context.Context, userID uint) (*redis.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return &sess, nil
}

func (s *memoryStore) DeleteSession(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *memoryStore) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = true
	return nil
}

func (s *memoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[tokenID], nil
}

type envelope struct {
	Success    bool            `json:"success"`
	Code       int             `json:"code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	StatusCode int             `json:"status_code"`
}

type api struct {
	t     *testing.T
	r     *gin.Engine
	token string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := rdbtest.New(t)
	log := zerolog.Nop()
	m := metrics.New("test", nil)
	store := &memoryStore{sessions: map[uint]redis.Session{}, revoked: map[string]bool{}}
	tokens := jwt.NewManager("test-secret", "bookshop", 15*time.Minute, time.Hour)

	users := rdb.NewUserRepository(db)
	books := rdb.NewBookRepository(db)
	genres := rdb.NewGenreRepository(db)
	orders := rdb.NewOrderRepository(db)
	tx := rdb.NewTxManager(db)

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	h := Handlers{
		Auth:  handler.NewAuthHandler(appuser.NewAuthUseCases(users, user.NewPasswordHasher(bcrypt.MinCost), tokens, store, log)),
		Book:  handler.NewBookHandler(appbook.NewBookUseCases(books, genres, tx, log)),
		Genre: handler.NewGenreHandler(appbook.NewGenreUseCases(genres, books, log)),
		Order: handler.NewOrderHandler(
			apporder.NewCreateOrderUseCase(orders, books, users, tx, messaging.NopPublisher{}, m, log),
			apporder.NewListOrdersUseCase(orders, log),
			apporder.NewGetOrderUseCase(orders, log),
			apporder.NewStatisticsUseCase(orders, log),
		),
	}
	return &api{t: t, r: New(cfg, log, m, middleware.NewAuthMiddleware(tokens, store), h)}
}

func (a *api) do(method, path string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func (a *api) data(env envelope, v interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(env.Data, v))
}

func (a *api) login() appuser.AuthResponse {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "alice", "email": "Alice@Example.com", "password": "secret123",
	})
	require.Equal(a.t, http.StatusCreated, status)
	var resp appuser.AuthResponse
	a.data(env, &resp)
	a.token = resp.AccessToken
	return resp
}

func TestPing(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestMetricsEndpoint(t *testing.T) {
	a := newAPI(t)
	a.do(http.MethodGet, "/ping", nil)

	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}

func TestNoRoute(t *testing.T) {
	a := newAPI(t)
	status, env := a.do(http.MethodGet, "/api/v2/nothing", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t)

	status, env := a.do(http.MethodGet, "/api/v1/books", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)

	resp := a.login()
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "Bearer", resp.TokenType)

	status, env = a.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "alice@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, 40950, env.Code)

	status, env = a.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "not-an-email", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 40901, env.Code)

	status, env = a.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 40103, env.Code)

	status, env = a.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
	var me appuser.UserInfo
	a.data(env, &me)
	assert.Equal(t, resp.User.ID, me.ID)

	status, env = a.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": resp.RefreshToken})
	require.Equal(t, http.StatusOK, status)
	var refreshed appuser.RefreshResponse
	a.data(env, &refreshed)
	assert.NotEmpty(t, refreshed.AccessToken)

	status, _ = a.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, status)

	// 登出后同一个Access Token失效
	status, _ = a.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// 登出后Refresh Token也不能再换发
	status, env = a.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": resp.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 40101, env.Code)
	assert.Empty(t, refreshedToken(env))

	// 重新登录后拿到新的Refresh Token可以正常使用
	status, env = a.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, status)
	var again appuser.AuthResponse
	a.data(env, &again)
	status, env = a.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": again.RefreshToken})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, refreshedToken(env))
}

func refreshedToken(env envelope) string {
	var r appuser.RefreshResponse
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &r) != nil {
		return ""
	}
	return r.AccessToken
}

func TestCatalogAndOrders(t *testing.T) {
	a := newAPI(t)
	a.login()

	status, env := a.do(http.MethodGet, "/api/v1/genres", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)

	status, env = a.do(http.MethodGet, "/api/v1/books", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.do(http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = a.do(http.MethodPost, "/api/v1/genres", map[string]string{"name": "科幻"})
	require.Equal(t, http.StatusCreated, status)
	var g appbook.GenreResponse
	a.data(env, &g)

	status, _ = a.do(http.MethodPost, "/api/v1/genres", map[string]string{"name": "科幻"})
	assert.Equal(t, http.StatusConflict, status)

	status, env = a.do(http.MethodPost, "/api/v1/books", map[string]interface{}{
		"title": "三体", "writer": "刘慈欣", "publisher": "重庆出版社",
		"publication_year": 2008, "price": 2300, "stock_quantity": 5, "genre_id": g.ID,
	})
	require.Equal(t, http.StatusCreated, status)
	var b appbook.BookResponse
	a.data(env, &b)
	require.NotNil(t, b.Genre)
	assert.Equal(t, "科幻", b.Genre.Name)

	status, _ = a.do(http.MethodPost, "/api/v1/books", map[string]interface{}{
		"title": "三体", "writer": "刘慈欣", "publisher": "重庆出版社",
		"price": 2300, "stock_quantity": 5, "genre_id": g.ID,
	})
	assert.Equal(t, http.StatusConflict, status)

	status, env = a.do(http.MethodPatch, fmt.Sprintf("/api/v1/books/%d", b.ID), map[string]interface{}{"price": 2000})
	require.Equal(t, http.StatusOK, status)
	a.data(env, &b)
	assert.Equal(t, int64(2000), b.Price)
	assert.Equal(t, "三体", b.Title)

	status, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/books?genre_id=%d", g.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var list []appbook.BookResponse
	a.data(env, &list)
	assert.Len(t, list, 1)

	status, _ = a.do(http.MethodGet, fmt.Sprintf("/api/v1/books/genre/%d", g.ID), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(http.MethodGet, "/api/v1/books/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// 下单
	status, env = a.do(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"book_id": b.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, status)
	var summary apporder.OrderSummary
	a.data(env, &summary)
	assert.Equal(t, 2, summary.TotalQuantity)
	assert.Equal(t, int64(4000), summary.TotalPrice)

	status, env = a.do(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"book_id": b.ID, "quantity": 10}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 40001, env.Code)

	status, _ = a.do(http.MethodPost, "/api/v1/orders", map[string]interface{}{"items": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", summary.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var detail apporder.OrderDetail
	a.data(env, &detail)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "三体", detail.Items[0].BookTitle)

	status, _ = a.do(http.MethodGet, "/api/v1/orders/999", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = a.do(http.MethodGet, "/api/v1/orders/statistics", nil)
	require.Equal(t, http.StatusOK, status)
	var stats apporder.StatisticsResponse
	a.data(env, &stats)
	assert.Equal(t, apporder.StatisticsResponse{
		TotalTransactions:       1,
		AverageTransactionValue: 4000,
		MostGenre:               "科幻",
		LeastGenre:              "科幻",
	}, stats)

	// 分类下有图书时不能删除
	status, env = a.do(http.MethodDelete, fmt.Sprintf("/api/v1/genres/%d", g.ID), nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 40010, env.Code)

	status, _ = a.do(http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", b.ID), nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = a.do(http.MethodGet, fmt.Sprintf("/api/v1/books/%d", b.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)

	// 图书删除后历史订单仍然可以查看
	status, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", summary.ID), nil)
	require.Equal(t, http.StatusOK, status)
	a.data(env, &detail)
	assert.Equal(t, "三体", detail.Items[0].BookTitle)
}
