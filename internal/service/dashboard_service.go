package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/halomart/halomart/internal/cache"
	"github.com/halomart/halomart/internal/repository"
)

const (
	dashboardCacheTTL      = 45 * time.Second
	dashboardCustomMaxDays = 90
)

// DashboardService 仪表盘服务
// 说明：聚合后台首页核心经营数据。
type DashboardService struct {
	repo repository.DashboardRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// DashboardQueryInput 仪表盘查询输入
type DashboardQueryInput struct {
	Range        string
	From         *time.Time
	To           *time.Time
	ForceRefresh bool
}

// DashboardOverviewResponse 仪表盘总览响应
type DashboardOverviewResponse struct {
	Range        string                 `json:"range"`
	From         string                 `json:"from"`
	To           string                 `json:"to"`
	Currency     string                 `json:"currency,omitempty"`
	KPI          DashboardKPI           `json:"kpi"`
	StatusCounts map[string]int64       `json:"status_counts"`
	TopProducts  []DashboardTopProduct  `json:"top_products"`
	RecentOrders []DashboardRecentOrder `json:"recent_orders"`
}

// DashboardKPI 仪表盘核心指标
type DashboardKPI struct {
	UsersTotal       int64  `json:"users_total"`
	NewUsers         int64  `json:"new_users"`
	ProductsTotal    int64  `json:"products_total"`
	ActiveProducts   int64  `json:"active_products"`
	OrdersTotal      int64  `json:"orders_total"`
	PendingOrders    int64  `json:"pending_orders"`
	DeliveredOrders  int64  `json:"delivered_orders"`
	CancelledOrders  int64  `json:"cancelled_orders"`
	RevenueDelivered string `json:"revenue_delivered"`
	ReviewsPending   int64  `json:"reviews_pending"`
}

// DashboardTopProduct 销量排行项
type DashboardTopProduct struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Orders      int64  `json:"orders"`
	Quantity    int64  `json:"quantity"`
	Amount      string `json:"amount"`
}

// DashboardRecentOrder 最近订单项
type DashboardRecentOrder struct {
	ID          uint   `json:"id"`
	OrderNo     string `json:"order_no"`
	UserEmail   string `json:"user_email"`
	Status      string `json:"status"`
	TotalAmount string `json:"total_amount"`
	Currency    string `json:"currency"`
	CreatedAt   string `json:"created_at"`
}

// resolveDashboardRange 解析查询区间，默认最近 7 天
func resolveDashboardRange(input DashboardQueryInput) (string, time.Time, time.Time, error) {
	now := time.Now()
	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	switch strings.ToLower(strings.TrimSpace(input.Range)) {
	case "", "7d":
		return "7d", endOfToday.AddDate(0, 0, -7), endOfToday, nil
	case "today":
		return "today", endOfToday.AddDate(0, 0, -1), endOfToday, nil
	case "30d":
		return "30d", endOfToday.AddDate(0, 0, -30), endOfToday, nil
	case "custom":
		if input.From == nil || input.To == nil || !input.From.Before(*input.To) {
			return "", time.Time{}, time.Time{}, ErrDashboardRangeInvalid
		}
		if input.To.Sub(*input.From) > dashboardCustomMaxDays*24*time.Hour {
			return "", time.Time{}, time.Time{}, ErrDashboardRangeInvalid
		}
		return "custom", *input.From, *input.To, nil
	default:
		return "", time.Time{}, time.Time{}, ErrDashboardRangeInvalid
	}
}

func dashboardCacheKey(rangeName string, startAt, endAt time.Time) string {
	return fmt.Sprintf("dashboard:overview:%s:%d:%d", rangeName, startAt.Unix(), endAt.Unix())
}

// GetOverview 获取仪表盘总览，短周期缓存降低聚合压力
func (s *DashboardService) GetOverview(ctx context.Context, input DashboardQueryInput) (*DashboardOverviewResponse, error) {
	rangeName, startAt, endAt, err := resolveDashboardRange(input)
	if err != nil {
		return nil, err
	}

	cacheKey := dashboardCacheKey(rangeName, startAt, endAt)
	if !input.ForceRefresh {
		var cached DashboardOverviewResponse
		if hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached); cacheErr == nil && hit {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetOverview(startAt, endAt)
	if err != nil {
		return nil, err
	}

	statusRows, err := s.repo.GetStatusCounts(startAt, endAt)
	if err != nil {
		return nil, err
	}
	statusCounts := make(map[string]int64, len(statusRows))
	for _, row := range statusRows {
		statusCounts[row.Status] = row.Total
	}

	rankingRows, err := s.repo.GetTopProducts(startAt, endAt, 10)
	if err != nil {
		return nil, err
	}
	topProducts := make([]DashboardTopProduct, 0, len(rankingRows))
	for _, row := range rankingRows {
		topProducts = append(topProducts, DashboardTopProduct{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Orders:      row.Orders,
			Quantity:    row.Quantity,
			Amount:      fmt.Sprintf("%.2f", row.Amount),
		})
	}

	recentOrders, err := s.repo.GetRecentOrders(10)
	if err != nil {
		return nil, err
	}
	recent := make([]DashboardRecentOrder, 0, len(recentOrders))
	for _, order := range recentOrders {
		email := ""
		if order.User != nil {
			email = order.User.Email
		}
		recent = append(recent, DashboardRecentOrder{
			ID:          order.ID,
			OrderNo:     order.OrderNo,
			UserEmail:   email,
			Status:      order.Status,
			TotalAmount: order.TotalAmount.String(),
			Currency:    order.Currency,
			CreatedAt:   order.CreatedAt.Format(time.RFC3339),
		})
	}

	response := &DashboardOverviewResponse{
		Range:    rangeName,
		From:     startAt.Format(time.RFC3339),
		To:       endAt.Format(time.RFC3339),
		Currency: overview.Currency,
		KPI: DashboardKPI{
			UsersTotal:       overview.UsersTotal,
			NewUsers:         overview.NewUsers,
			ProductsTotal:    overview.ProductsTotal,
			ActiveProducts:   overview.ActiveProducts,
			OrdersTotal:      overview.OrdersTotal,
			PendingOrders:    overview.PendingOrders,
			DeliveredOrders:  overview.DeliveredOrders,
			CancelledOrders:  overview.CancelledOrders,
			RevenueDelivered: fmt.Sprintf("%.2f", overview.RevenueDelivered),
			ReviewsPending:   overview.ReviewsPending,
		},
		StatusCounts: statusCounts,
		TopProducts:  topProducts,
		RecentOrders: recent,
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}
