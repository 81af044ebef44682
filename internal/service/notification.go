package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/souqly/storefront/internal/models"
)

type NotificationService struct {
	DB *gorm.DB
}

func (s *NotificationService) ListMine(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notes []models.Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, noteID uint) error {
	var note models.Notification
	err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", noteID, userID).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: notification %d", ErrNotFound, noteID)
	}
	if err != nil {
		return err
	}

	note.IsRead = true
	return s.DB.WithContext(ctx).Save(&note).Error
}
