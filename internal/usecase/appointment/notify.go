package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/repository"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/goroutine"
	"github.com/ignatzorin/petmeet-backend/internal/logger"
)

const notifyTimeout = 10 * time.Second

const timeLayout = "02.01.2006 15:04"

// notifyAsync отправляет уведомление после коммита в отдельной горутине.
// Ошибка доставки только логируется.
func notifyAsync(ctx context.Context, notifier repository.Notifier, userID uuid.UUID, nt valueobject.NotificationType, title, message string) {
	if notifier == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(base, notifyTimeout)
		defer cancel()
		if err := notifier.Notify(ctx, userID, title, message, string(nt)); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"user_id": userID,
				"type":    nt,
			}).WithError(err).Warn("Не удалось отправить уведомление")
		}
	})
}

func formatWhen(a *entity.Appointment) string {
	return a.AppointmentAt.Format(timeLayout)
}

func describeCheckIn(a *entity.Appointment) string {
	return fmt.Sprintf("Собеседник уже на месте встречи %s. Отметьтесь, когда придёте.", formatWhen(a))
}
