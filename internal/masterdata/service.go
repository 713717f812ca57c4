package masterdata

import (
	"context"

	"github.com/stockroom-app/stockroom/internal/inventory"
)

// lowStockCutoff mirrors the inventory classification so the two pages agree.
const lowStockCutoff = inventory.LowStockThreshold

// Service exposes read models for the overview pages.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Departments returns the tenant's department overviews.
func (s *Service) Departments(ctx context.Context, ownerID int64) ([]DepartmentOverview, error) {
	return s.repo.ListDepartments(ctx, ownerID)
}

// Suppliers returns the tenant's supplier overviews.
func (s *Service) Suppliers(ctx context.Context, ownerID int64) ([]SupplierOverview, error) {
	return s.repo.ListSuppliers(ctx, ownerID)
}
