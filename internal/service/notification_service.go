package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/petmeet-backend/internal/logger"
	"github.com/ignatzorin/petmeet-backend/internal/models"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Broadcaster доставляет событие подключённым клиентам пользователя.
type Broadcaster interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// NotificationService сохраняет уведомления и отправляет их по вебсокету.
type NotificationService struct {
	repo        NotificationRepository
	broadcaster Broadcaster
}

// NewNotificationService создаёт новый сервис уведомлений. broadcaster может быть nil.
func NewNotificationService(repo NotificationRepository, broadcaster Broadcaster) *NotificationService {
	return &NotificationService{repo: repo, broadcaster: broadcaster}
}

// Notify сохраняет уведомление и пытается доставить его онлайн.
// Ошибка доставки по вебсокету не считается ошибкой: запись уже в базе.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message, notificationType string) error {
	payload := models.NotificationPayload{Title: title, Message: message}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notification service: marshal payload %w", err)
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Payload: payloadBytes,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.broadcaster == nil {
		return nil
	}
	if err := s.broadcaster.BroadcastToUser(userID, notificationType, notification); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"type":    notificationType,
		}).WithError(err).Warn("Не удалось отправить уведомление по вебсокету")
	}
	return nil
}
