package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
)

// Интерфейсы внешних сервисов, от которых зависит модуль встреч.

type MatchReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Match, error)
}

type MessageCounter interface {
	// CountByMatch возвращает число сообщений в чате мэтча по каждому отправителю.
	CountByMatch(ctx context.Context, matchID uuid.UUID) (map[uuid.UUID]int, error)
}

type PetProfileReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PetProfile, error)
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, notificationType string) error
}
