package rdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/order"
)

// orderRepository 订单仓储实现
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
// 先插入订单拿到ID，再批量插入明细；调用方负责开启事务
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	db := getDB(ctx, r.db)

	m := &OrderModel{
		UserID:    o.UserID,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if err := db.Omit("User", "Items").Create(m).Error; err != nil {
		return dbError(err, "创建订单失败")
	}

	items := make([]OrderItemModel, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemModel{
			OrderID:  m.ID,
			BookID:   item.BookID,
			Quantity: item.Quantity,
		})
	}
	if err := db.Omit("Book").Create(&items).Error; err != nil {
		return dbError(err, "创建订单明细失败")
	}

	o.ID = m.ID
	o.CreatedAt = m.CreatedAt
	o.UpdatedAt = m.UpdatedAt
	for i := range o.Items {
		o.Items[i].ID = items[i].ID
		o.Items[i].OrderID = m.ID
	}
	return nil
}

// FindAll 全部订单，按创建时间倒序
func (r *orderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	var models []OrderModel
	err := r.withItems(getDB(ctx, r.db)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, dbError(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, 0, len(models))
	for i := range models {
		orders = append(orders, models[i].toEntity())
	}
	return orders, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var m OrderModel
	if err := r.withItems(getDB(ctx, r.db)).First(&m, id).Error; err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, dbError(err, "查询订单失败")
	}
	return m.toEntity(), nil
}

// withItems 预加载明细和图书
// 图书使用Unscoped，已软删除的图书在历史订单里仍能显示书名和价格
func (r *orderRepository) withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Items.Book", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		})
}

// SalesSummary 统计聚合
// 三条SQL：订单数、总金额（quantity × 图书当前价格）、每个分类的销量
// 分类按ID升序返回，便于领域层处理销量相同的情况
func (r *orderRepository) SalesSummary(ctx context.Context) (*order.SalesSummary, error) {
	db := getDB(ctx, r.db)
	summary := &order.SalesSummary{}

	if err := db.Model(&OrderModel{}).Count(&summary.TotalTransactions).Error; err != nil {
		return nil, dbError(err, "统计订单数量失败")
	}

	err := db.Raw(`SELECT COALESCE(SUM(oi.quantity * b.price), 0)
		FROM order_items oi
		JOIN books b ON b.id = oi.book_id`).
		Scan(&summary.TotalRevenue).Error
	if err != nil {
		return nil, dbError(err, "统计订单金额失败")
	}

	err = db.Raw(`SELECT g.id AS genre_id, g.name AS genre_name, COALESCE(SUM(oi.quantity), 0) AS quantity
		FROM order_items oi
		JOIN books b ON b.id = oi.book_id
		JOIN genres g ON g.id = b.genre_id
		GROUP BY g.id, g.name
		ORDER BY g.id ASC`).
		Scan(&summary.Genres).Error
	if err != nil {
		return nil, dbError(err, "统计分类销量失败")
	}
	return summary, nil
}

func (m *OrderModel) toEntity() *order.Order {
	o := &order.Order{
		ID:        m.ID,
		UserID:    m.UserID,
		Items:     make([]order.OrderItem, 0, len(m.Items)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, item := range m.Items {
		oi := order.OrderItem{
			ID:       item.ID,
			OrderID:  item.OrderID,
			BookID:   item.BookID,
			Quantity: item.Quantity,
		}
		if item.Book != nil {
			oi.BookTitle = item.Book.Title
			oi.UnitPrice = item.Book.Price
		}
		o.Items = append(o.Items, oi)
	}
	return o
}
