package order

import (
	"sort"
	"time"
)

// Order 订单实体(聚合根)
// 设计说明:
// 1. Order是聚合根，OrderItem只能随订单一起创建
// 2. 订单创建后不可修改(没有状态流转、取消、回补库存)
// 3. 金额不落库：读取时按 quantity × 图书当前价格 计算
type Order struct {
	ID        uint
	UserID    uint
	Items     []OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem 订单明细项
// BookTitle/UnitPrice 在查询时从图书填充；下单时UnitPrice取校验库存时读到的价格
type OrderItem struct {
	ID        uint
	OrderID   uint
	BookID    uint
	Quantity  int
	BookTitle string
	UnitPrice int64
}

// Subtotal 明细小计(分)
func (i OrderItem) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Line 下单请求中的一行
type Line struct {
	BookID   uint
	Quantity int
}

// NewOrder 创建订单(工厂方法)
// 每个请求行生成一条明细；同一本书出现多次时保留多条
func NewOrder(userID uint, lines []Line) (*Order, error) {
	if userID == 0 {
		return nil, ErrInvalidUser
	}
	if len(lines) == 0 {
		return nil, ErrEmptyItems
	}

	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		if l.BookID == 0 {
			return nil, ErrInvalidBookID
		}
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		items = append(items, OrderItem{BookID: l.BookID, Quantity: l.Quantity})
	}

	now := time.Now()
	return &Order{
		UserID:    userID,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Demand 每本书的总需求量(同一本书的多行数量相加)
func (o *Order) Demand() map[uint]int {
	demand := make(map[uint]int, len(o.Items))
	for _, item := range o.Items {
		demand[item.BookID] += item.Quantity
	}
	return demand
}

// BookIDs 去重后按升序排列的图书ID
// 所有事务按同一顺序加锁，避免两笔订单交叉锁行导致死锁
func (o *Order) BookIDs() []uint {
	demand := o.Demand()
	ids := make([]uint, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TotalQuantity 总册数
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice 总金额(分)
func (o *Order) TotalPrice() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}
