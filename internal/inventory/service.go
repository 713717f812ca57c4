package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ImagePort re-hosts a product image from a public HTTPS source URL.
type ImagePort interface {
	ValidateSource(rawURL string) error
	Rehost(ctx context.Context, srcURL string) (string, error)
}

// SummaryInvalidator drops cached dashboard aggregates after a mutation.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, ownerID int64) error
}

// Service coordinates product operations for a tenant.
type Service struct {
	repo      RepositoryPort
	images    ImagePort
	summaries SummaryInvalidator
	logger    *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, images ImagePort, summaries SummaryInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, images: images, summaries: summaries, logger: logger}
}

// List returns the tenant's full product set.
func (s *Service) List(ctx context.Context, ownerID int64) ([]Product, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns one product, owner-scoped.
func (s *Service) Get(ctx context.Context, id, ownerID int64) (Product, error) {
	return s.repo.GetForOwner(ctx, id, ownerID)
}

// Create validates the payload, optionally re-hosts the image, then inserts
// the product inside one transaction together with the department and
// supplier get-or-creates. A duplicate SKU surfaces as ErrDuplicateSKU with
// no product row written; the upserts from the attempt may persist.
func (s *Service) Create(ctx context.Context, ownerID int64, input ProductInput) (Product, error) {
	if err := validateInput(input); err != nil {
		return Product{}, err
	}

	imageURL, err := s.resolveImage(ctx, input.ImageURL, "")
	if err != nil {
		return Product{}, err
	}

	var created Product
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		deptID, err := tx.UpsertDepartment(ctx, ownerID, strings.TrimSpace(input.Department))
		if err != nil {
			return err
		}
		suppID, err := tx.UpsertSupplier(ctx, ownerID, strings.TrimSpace(input.Supplier))
		if err != nil {
			return err
		}
		created = Product{
			OwnerID:        ownerID,
			DepartmentID:   deptID,
			SupplierID:     suppID,
			Name:           input.Name,
			Description:    input.Description,
			Price:          input.Price,
			Stock:          input.Stock,
			Delivered:      input.Delivered,
			SKU:            input.SKU,
			ImageURL:       imageURL,
			DepartmentName: strings.TrimSpace(input.Department),
			SupplierName:   strings.TrimSpace(input.Supplier),
		}
		id, err := tx.InsertProduct(ctx, created)
		if err != nil {
			return err
		}
		created.ID = id
		return nil
	})
	if err != nil {
		return Product{}, err
	}

	s.invalidateSummary(ctx, ownerID)
	return created, nil
}

// Update re-validates and rewrites the product's mutable fields. Department
// and supplier names go through the same get-or-create as creation, which is
// a no-op when the names did not change.
func (s *Service) Update(ctx context.Context, id, ownerID int64, input ProductInput) (Product, error) {
	if err := validateInput(input); err != nil {
		return Product{}, err
	}

	existing, err := s.repo.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return Product{}, err
	}

	imageURL, err := s.resolveImage(ctx, input.ImageURL, existing.ImageURL)
	if err != nil {
		return Product{}, err
	}

	updated := existing
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		deptID, err := tx.UpsertDepartment(ctx, ownerID, strings.TrimSpace(input.Department))
		if err != nil {
			return err
		}
		suppID, err := tx.UpsertSupplier(ctx, ownerID, strings.TrimSpace(input.Supplier))
		if err != nil {
			return err
		}
		updated.DepartmentID = deptID
		updated.SupplierID = suppID
		updated.Name = input.Name
		updated.Description = input.Description
		updated.Price = input.Price
		updated.Stock = input.Stock
		updated.Delivered = input.Delivered
		updated.SKU = input.SKU
		updated.ImageURL = imageURL
		updated.DepartmentName = strings.TrimSpace(input.Department)
		updated.SupplierName = strings.TrimSpace(input.Supplier)
		return tx.UpdateProduct(ctx, updated)
	})
	if err != nil {
		return Product{}, err
	}

	s.invalidateSummary(ctx, ownerID)
	return updated, nil
}

// Delete removes a product owned by the caller. A product belonging to
// another tenant is indistinguishable from a missing one.
func (s *Service) Delete(ctx context.Context, id, ownerID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteProduct(ctx, id, ownerID)
	})
	if err != nil {
		return err
	}
	s.invalidateSummary(ctx, ownerID)
	return nil
}

// resolveImage applies the image policy: keep the current image when no new
// source is supplied, otherwise validate and re-host the new source.
func (s *Service) resolveImage(ctx context.Context, src, current string) (string, error) {
	if src == "" || src == current {
		return current, nil
	}
	if s.images == nil {
		return "", fmt.Errorf("%w: image uploads are not configured", ErrInvalidInput)
	}
	if err := s.images.ValidateSource(src); err != nil {
		return "", err
	}
	return s.images.Rehost(ctx, src)
}

func (s *Service) invalidateSummary(ctx context.Context, ownerID int64) {
	if s.summaries == nil {
		return
	}
	if err := s.summaries.Invalidate(ctx, ownerID); err != nil {
		s.logger.Warn("invalidate dashboard summary", slog.Int64("owner", ownerID), slog.Any("error", err))
	}
}

func validateInput(input ProductInput) error {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	case input.Price < 1:
		return fmt.Errorf("%w: product price is required", ErrInvalidInput)
	case input.Stock < 1:
		return fmt.Errorf("%w: product stock is required", ErrInvalidInput)
	case input.Delivered < 1:
		return fmt.Errorf("%w: product total delivered is required", ErrInvalidInput)
	case len(input.SKU) < 5 || len(input.SKU) > 16:
		return fmt.Errorf("%w: product sku must be 5-16 characters", ErrInvalidInput)
	case strings.TrimSpace(input.Department) == "":
		return fmt.Errorf("%w: product department is required", ErrInvalidInput)
	case strings.TrimSpace(input.Supplier) == "":
		return fmt.Errorf("%w: product supplier is required", ErrInvalidInput)
	}
	return nil
}
