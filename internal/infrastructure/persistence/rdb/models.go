package rdb

import (
	"time"

	"gorm.io/gorm"
)

// 数据模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain层的实体不依赖GORM，Repository负责两者之间的转换
// 3. 表结构与migrations/mysql下的SQL保持一致

// UserModel 用户表
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Username  string         `gorm:"size:50;comment:用户名"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// GenreModel 图书分类表
type GenreModel struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"uniqueIndex;size:50;not null;comment:分类名称"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (GenreModel) TableName() string {
	return "genres"
}

// BookModel 图书表
// 1. 价格使用int64存储"分"
// 2. stock_quantity带CHECK约束，条件UPDATE之外再兜一层
type BookModel struct {
	ID              uint           `gorm:"primaryKey"`
	Title           string         `gorm:"uniqueIndex;size:200;not null;comment:书名"`
	Writer          string         `gorm:"size:100;not null;comment:作者"`
	Publisher       string         `gorm:"size:100;not null;comment:出版社"`
	PublicationYear int            `gorm:"not null;default:0;comment:出版年份"`
	Description     string         `gorm:"type:text;comment:简介"`
	Price           int64          `gorm:"not null;comment:价格(分)"`
	StockQuantity   int            `gorm:"not null;default:0;check:chk_books_stock,stock_quantity >= 0;comment:库存数量"`
	GenreID         uint           `gorm:"index;not null;comment:分类ID"`
	Genre           *GenreModel    `gorm:"foreignKey:GenreID"`
	CreatedAt       time.Time      `gorm:"comment:创建时间"`
	UpdatedAt       time.Time      `gorm:"comment:更新时间"`
	DeletedAt       gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// OrderModel 订单表，与OrderItemModel一对多
type OrderModel struct {
	ID        uint             `gorm:"primaryKey"`
	UserID    uint             `gorm:"index;not null;comment:下单用户ID"`
	User      *UserModel       `gorm:"foreignKey:UserID"`
	Items     []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel 订单明细表
// 不保存单价快照，金额按图书当前价格计算
type OrderItemModel struct {
	ID       uint       `gorm:"primaryKey"`
	OrderID  uint       `gorm:"index;not null;comment:订单ID"`
	BookID   uint       `gorm:"index;not null;comment:图书ID"`
	Book     *BookModel `gorm:"foreignKey:BookID"`
	Quantity int        `gorm:"not null;comment:购买数量"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// allModels AutoMigrate的顺序（被引用的表在前）
func allModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&GenreModel{},
		&BookModel{},
		&OrderModel{},
		&OrderItemModel{},
	}
}
