package review

import (
	"context"
	"strings"

	"storefront/internal/contract"
	"storefront/internal/domain"
	reviewrepo "storefront/internal/repository/review"
	"storefront/internal/validate"
)

type Service struct {
	repo      reviewrepo.Repository
	products  productGetter
	validator *validate.Validator
}

type productGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

func New(repo reviewrepo.Repository, products productGetter, v *validate.Validator) *Service {
	if v == nil {
		v = validate.New()
	}
	return &Service{repo: repo, products: products, validator: v}
}

// List returns the product's reviews newest first. Unknown products have none.
func (s *Service) List(ctx context.Context, productID int64) ([]domain.Review, error) {
	return s.repo.ListByProduct(ctx, productID)
}

// Create stores a review for productID. userID is set when the reviewer is signed in.
func (s *Service) Create(ctx context.Context, productID int64, userID *string, in contract.CreateReviewInput) (*domain.Review, error) {
	in.ReviewerName = strings.TrimSpace(in.ReviewerName)
	in.Comment = strings.TrimSpace(in.Comment)
	if in.ImageURL != nil && strings.TrimSpace(*in.ImageURL) == "" {
		in.ImageURL = nil
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Review{
		ProductID:    productID,
		UserID:       userID,
		ReviewerName: in.ReviewerName,
		Rating:       in.Rating,
		Comment:      in.Comment,
		ImageURL:     in.ImageURL,
	})
}
