package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createOrder *apporder.CreateOrderUseCase
	listOrders  *apporder.ListOrdersUseCase
	getOrder    *apporder.GetOrderUseCase
	statistics  *apporder.StatisticsUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createOrder *apporder.CreateOrderUseCase,
	listOrders *apporder.ListOrdersUseCase,
	getOrder *apporder.GetOrderUseCase,
	statistics *apporder.StatisticsUseCase,
) *OrderHandler {
	return &OrderHandler{
		createOrder: createOrder,
		listOrders:  listOrders,
		getOrder:    getOrder,
		statistics:  statistics,
	}
}

// Create 下单
// @Summary      创建订单
// @Description  校验库存后扣减，整个过程在一个事务里；user_id不传时为当前用户
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "订单明细"
// @Success      201 {object} response.Response{data=apporder.OrderSummary}
// @Failure      400 {object} response.Response "参数错误或库存不足"
// @Failure      403 {object} response.Response "不能为其他用户下单"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	items := make([]apporder.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, apporder.CreateOrderItem{BookID: item.BookID, Quantity: item.Quantity})
	}

	result, err := h.createOrder.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		ActorID: middleware.GetUserID(c),
		UserID:  req.UserID,
		Items:   items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List 订单列表
// @Summary      订单列表
// @Description  按创建时间倒序；没有订单时返回404
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]apporder.OrderSummary}
// @Failure      404 {object} response.Response "暂无订单"
// @Router       /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.listOrders.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, orders)
}

// Get 订单详情
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderDetail}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.getOrder.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

// Statistics 销售统计
// @Summary      销售统计
// @Description  订单总数、平均订单金额、销量最多和最少的分类
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=apporder.StatisticsResponse}
// @Router       /api/v1/orders/statistics [get]
func (h *OrderHandler) Statistics(c *gin.Context) {
	stats, err := h.statistics.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
