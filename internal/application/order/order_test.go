package order

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/genre"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/rdb/rdbtest"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

type recordingEvents struct {
	mu     sync.Mutex
	orders []uint
}

func (r *recordingEvents) OrderCreated(_ context.Context, o *order.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, o.ID)
}

type env struct {
	books   book.Repository
	genres  genre.Repository
	users   user.Repository
	orders  order.Repository
	events  *recordingEvents
	metrics *metrics.Metrics

	create *CreateOrderUseCase
	list   *ListOrdersUseCase
	get    *GetOrderUseCase
	stats  *StatisticsUseCase
}

func newEnv(t *testing.T) *env {
	return newEnvWithDB(t, rdbtest.New(t))
}

func newEnvWithDB(t *testing.T, db *gorm.DB) *env {
	e := &env{
		books:   rdb.NewBookRepository(db),
		genres:  rdb.NewGenreRepository(db),
		users:   rdb.NewUserRepository(db),
		orders:  rdb.NewOrderRepository(db),
		events:  &recordingEvents{},
		metrics: metrics.New("test", nil),
	}
	log := zerolog.Nop()
	e.create = NewCreateOrderUseCase(e.orders, e.books, e.users, rdb.NewTxManager(db), e.events, e.metrics, log)
	e.list = NewListOrdersUseCase(e.orders, log)
	e.get = NewGetOrderUseCase(e.orders, log)
	e.stats = NewStatisticsUseCase(e.orders, log)
	return e
}

func (e *env) seedUser(t *testing.T, email string) *user.User {
	u := user.NewUser("buyer", email, "hashed")
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *env) seedGenre(t *testing.T, name string) *genre.Genre {
	g, err := genre.NewGenre(name)
	require.NoError(t, err)
	require.NoError(t, e.genres.Create(context.Background(), g))
	return g
}

func (e *env) seedBook(t *testing.T, title string, price int64, stock int, genreID uint) *book.Book {
	b, err := book.NewBook(title, "作者", "出版社", 2001, "", price, stock, genreID)
	require.NoError(t, err)
	require.NoError(t, e.books.Create(context.Background(), b))
	return b
}

func (e *env) stock(t *testing.T, id uint) int {
	b, err := e.books.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b.StockQuantity
}

func TestCreateOrder_Success(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.seedUser(t, "a@example.com")
	g := e.seedGenre(t, "科幻")
	a := e.seedBook(t, "A", 1000, 10, g.ID)
	b := e.seedBook(t, "B", 250, 5, g.ID)

	resp, err := e.create.Execute(ctx, CreateOrderRequest{
		ActorID: u.ID,
		Items: []CreateOrderItem{
			{BookID: a.ID, Quantity: 2},
			{BookID: b.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, 5, resp.TotalQuantity)
	assert.Equal(t, int64(2*1000+3*250), resp.TotalPrice)

	assert.Equal(t, 8, e.stock(t, a.ID))
	assert.Equal(t, 2, e.stock(t, b.ID))
	assert.Equal(t, []uint{resp.ID}, e.events.orders)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.OrdersTotal.WithLabelValues(metrics.OrderResultSuccess)))
	assert.Equal(t, 5.0, testutil.ToFloat64(e.metrics.BooksSoldTotal))
}

func TestCreateOrder_DuplicateBookLinesAreSummed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.seedUser(t, "a@example.com")
	g := e.seedGenre(t, "科幻")
	a := e.seedBook(t, "A", 100, 5, g.ID)

	// 单行都不超过库存，合计超过
	_, err := e.create.Execute(ctx, CreateOrderRequest{
		ActorID: u.ID,
		Items:   []CreateOrderItem{{BookID: a.ID, Quantity: 3}, {BookID: a.ID, Quantity: 3}},
	})
	assert.ErrorIs(t, err, book.ErrInsufficientStock)
	assert.Equal(t, 5, e.stock(t, a.ID))

	resp, err := e.create.Execute(ctx, CreateOrderRequest{
		ActorID: u.ID,
		Items:   []CreateOrderItem{{BookID: a.ID, Quantity: 2}, {BookID: a.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, e.stock(t, a.ID))

	detail, err := e.get.Execute(ctx, resp.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Items, 2, "每个请求行一条明细")
}

func TestCreateOrder_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.seedUser(t, "a@example.com")
	other := e.seedUser(t, "b@example.com")
	g := e.seedGenre(t, "科幻")
	a := e.seedBook(t, "A", 100, 2, g.ID)

	tests := []struct {
		name string
		req  CreateOrderRequest
		want error
	}{
		{"明细为空", CreateOrderRequest{ActorID: u.ID}, order.ErrEmptyItems},
		{"数量为0", CreateOrderRequest{ActorID: u.ID, Items: []CreateOrderItem{{BookID: a.ID, Quantity: 0}}}, order.ErrInvalidQuantity},
		{"图书ID为0", CreateOrderRequest{ActorID: u.ID, Items: []CreateOrderItem{{BookID: 0, Quantity: 1}}}, order.ErrInvalidBookID},
		{"图书不存在", CreateOrderRequest{ActorID: u.ID, Items: []CreateOrderItem{{BookID: a.ID, Quantity: 1}, {BookID: 999, Quantity: 1}}}, book.ErrBookNotFound},
		{"库存不足", CreateOrderRequest{ActorID: u.ID, Items: []CreateOrderItem{{BookID: a.ID, Quantity: 3}}}, book.ErrInsufficientStock},
		{"替别人下单", CreateOrderRequest{ActorID: u.ID, UserID: other.ID, Items: []CreateOrderItem{{BookID: a.ID, Quantity: 1}}}, order.ErrNotOwner},
		{"用户不存在", CreateOrderRequest{UserID: 12345, Items: []CreateOrderItem{{BookID: a.ID, Quantity: 1}}}, user.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.create.Execute(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// 失败的请求不会修改库存，也不会写订单
	assert.Equal(t, 2, e.stock(t, a.ID))
	_, err := e.list.Execute(ctx)
	assert.ErrorIs(t, err, order.ErrNoOrders)
	assert.Empty(t, e.events.orders)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.OrdersTotal.WithLabelValues(metrics.OrderResultInsufficientStock)))
}

func TestCreateOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	// 文件库多个连接，下单事务真正并发执行
	e := newEnvWithDB(t, rdbtest.NewFile(t, 8))
	u := e.seedUser(t, "a@example.com")
	g := e.seedGenre(t, "科幻")
	a := e.seedBook(t, "A", 100, 8, g.ID)

	const workers = 20
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = e.create.Execute(context.Background(), CreateOrderRequest{
				ActorID: u.ID,
				Items:   []CreateOrderItem{{BookID: a.ID, Quantity: 1}},
			})
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, book.ErrInsufficientStock)
	}
	assert.Equal(t, 8, succeeded)
	assert.Equal(t, 0, e.stock(t, a.ID))
	assert.Len(t, e.events.orders, 8)
}

func TestListAndGetOrders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.seedUser(t, "a@example.com")
	g := e.seedGenre(t, "科幻")
	a := e.seedBook(t, "A", 100, 10, g.ID)

	first, err := e.create.Execute(ctx, CreateOrderRequest{ActorID: u.ID, Items: []CreateOrderItem{{BookID: a.ID, Quantity: 1}}})
	require.NoError(t, err)
	second, err := e.create.Execute(ctx, CreateOrderRequest{ActorID: u.ID, Items: []CreateOrderItem{{BookID: a.ID, Quantity: 4}}})
	require.NoError(t, err)

	list, err := e.list.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []OrderSummary{*second, *first}, list)

	detail, err := e.get.Execute(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, detail.UserID)
	assert.Equal(t, []OrderItemDetail{{BookID: a.ID, BookTitle: "A", Quantity: 4, SubtotalPrice: 400}}, detail.Items)

	_, err = e.get.Execute(ctx, 999)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestStatistics(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	empty, err := e.stats.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, &StatisticsResponse{MostGenre: order.NoGenre, LeastGenre: order.NoGenre}, empty)

	u := e.seedUser(t, "a@example.com")
	scifi := e.seedGenre(t, "科幻")
	poetry := e.seedGenre(t, "诗歌")
	history := e.seedGenre(t, "历史")
	a := e.seedBook(t, "A", 333, 100, scifi.ID)
	b := e.seedBook(t, "B", 100, 100, poetry.ID)
	c := e.seedBook(t, "C", 100, 100, history.ID)

	_, err = e.create.Execute(ctx, CreateOrderRequest{ActorID: u.ID, Items: []CreateOrderItem{{BookID: a.ID, Quantity: 1}, {BookID: b.ID, Quantity: 2}}})
	require.NoError(t, err)
	_, err = e.create.Execute(ctx, CreateOrderRequest{ActorID: u.ID, Items: []CreateOrderItem{{BookID: c.ID, Quantity: 2}}})
	require.NoError(t, err)
	_, err = e.create.Execute(ctx, CreateOrderRequest{ActorID: u.ID, Items: []CreateOrderItem{{BookID: a.ID, Quantity: 1}}})
	require.NoError(t, err)

	// 金额 333+200+200+333=1066，1066/3=355.33
	// 科幻2、诗歌2、历史2：三者相同，最多和最少都取ID最小的科幻
	got, err := e.stats.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, &StatisticsResponse{
		TotalTransactions:       3,
		AverageTransactionValue: 355,
		MostGenre:               "科幻",
		LeastGenre:              "科幻",
	}, got)
}

func TestOrderResult(t *testing.T) {
	assert.Equal(t, metrics.OrderResultSuccess, orderResult(nil))
	assert.Equal(t, metrics.OrderResultInsufficientStock, orderResult(book.ErrInsufficientStock.WithMessage("x")))
	assert.Equal(t, metrics.OrderResultNotFound, orderResult(book.ErrBookNotFound))
	assert.Equal(t, metrics.OrderResultNotFound, orderResult(user.ErrUserNotFound))
	assert.Equal(t, metrics.OrderResultInvalid, orderResult(order.ErrEmptyItems))
	assert.Equal(t, metrics.OrderResultError, orderResult(apperrors.Wrap(assert.AnError, "db")))
}
