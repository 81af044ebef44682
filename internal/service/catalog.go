package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/souqly/storefront/internal/models"
)

type CatalogService struct {
	DB *gorm.DB
}

type ProductRequest struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	PriceAfterDiscount *float64 `json:"priceAfterDiscount"`
	ImageCover         string   `json:"imageCover"`
	Images             []string `json:"images"`
	CategoryID         uint     `json:"category"`
	CountInStock       int      `json:"countInStock"`
}

func (s *CatalogService) ListProducts(ctx context.Context, keyword string, categoryID uint) ([]models.Product, error) {
	q := s.DB.WithContext(ctx).Model(&models.Product{}).
		Preload("Images").
		Preload("Reviews")

	if keyword != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(keyword)+"%")
	}
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.DB.WithContext(ctx).
		Preload("Images").
		Preload("Reviews").
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req ProductRequest) (*models.Product, error) {
	if req.Name == "" || req.Price <= 0 || req.ImageCover == "" || req.CategoryID == 0 {
		return nil, fmt.Errorf("%w: name, price, imageCover and category are required", ErrValidation)
	}
	if req.CountInStock < 0 {
		return nil, fmt.Errorf("%w: countInStock must not be negative", ErrValidation)
	}

	product := models.Product{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		PriceAfterDiscount: req.PriceAfterDiscount,
		ImageCover:         req.ImageCover,
		CategoryID:         req.CategoryID,
		CountInStock:       req.CountInStock,
	}
	for _, url := range req.Images {
		product.Images = append(product.Images, models.ProductImage{URL: url})
	}

	if err := s.DB.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct keeps the stored value for every zero-valued field in the
// request, so admins can send partial edits.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req ProductRequest) (*models.Product, error) {
	var product models.Product
	err := s.DB.WithContext(ctx).Preload("Images").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.PriceAfterDiscount != nil {
		product.PriceAfterDiscount = req.PriceAfterDiscount
	}
	if req.ImageCover != "" {
		product.ImageCover = req.ImageCover
	}
	if req.CategoryID != 0 {
		product.CategoryID = req.CategoryID
	}
	if req.CountInStock > 0 {
		product.CountInStock = req.CountInStock
	}

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Images != nil {
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
				return err
			}
			product.Images = nil
			for _, url := range req.Images {
				product.Images = append(product.Images, models.ProductImage{ProductID: product.ID, URL: url})
			}
		}
		return tx.Save(&product).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &product, nil
}

// DeleteProduct removes the catalog entry only. Order item snapshots keep
// the name, price and image of everything already sold.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	var product models.Product
	err := s.DB.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// AddReview appends a review and recomputes the aggregates in the same
// transaction. A user may review the same product more than once.
func (s *CatalogService) AddReview(ctx context.Context, productID, userID uint, name, avatar string, req ReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if req.Comment == "" {
		return nil, fmt.Errorf("%w: comment is required", ErrValidation)
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		Name:      name,
		Avatar:    avatar,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", ErrNotFound, productID)
			}
			return err
		}

		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, productID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// RemoveReview deletes a review on behalf of its author or an admin. The
// check lives here, not in the UI.
func (s *CatalogService) RemoveReview(ctx context.Context, productID, reviewID, userID uint, isAdmin bool) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		err := tx.Where("id = ? AND product_id = ?", reviewID, productID).First(&review).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}
		if err != nil {
			return err
		}

		if !isAdmin && review.UserID != userID {
			return fmt.Errorf("%w: not your review", ErrNotAuthorized)
		}

		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, productID)
	})
}

func recomputeRating(tx *gorm.DB, productID uint) error {
	var reviews []models.Review
	if err := tx.Where("product_id = ?", productID).Find(&reviews).Error; err != nil {
		return err
	}

	rating := 0.0
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		rating = float64(sum) / float64(len(reviews))
	}

	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]interface{}{
			"rating":      rating,
			"num_reviews": len(reviews),
		}).Error
}
