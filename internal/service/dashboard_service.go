package service

import (
	"time"

	"sibos-pos/internal/repository"

	"github.com/google/uuid"
)

type DashboardService interface {
	GetStockMovement(outletID uuid.UUID, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(outletID uuid.UUID) (*repository.DashboardStats, error)
	GetSalesToday(outletID uuid.UUID) (float64, int64, error)
}

type dashboardService struct {
	movementRepo repository.MovementRepository
	orderRepo    repository.OrderRepository
}

func NewDashboardService(movementRepo repository.MovementRepository, orderRepo repository.OrderRepository) DashboardService {
	return &dashboardService{movementRepo: movementRepo, orderRepo: orderRepo}
}

func (s *dashboardService) GetStockMovement(outletID uuid.UUID, days int) ([]repository.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.movementRepo.GetStockMovement(outletID, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(outletID uuid.UUID) (*repository.DashboardStats, error) {
	return s.movementRepo.GetDashboardStats(outletID)
}

func (s *dashboardService) GetSalesToday(outletID uuid.UUID) (float64, int64, error) {
	now := time.Now().In(jakartaLoc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, jakartaLoc)
	return s.orderRepo.SalesTotal(outletID, start, now)
}
