// Package sweeper переводит встречи по времени, когда участники сами этого не сделали:
// истечение приглашений, неявку и автозавершение.
package sweeper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/petmeet-backend/internal/clock"
	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/repository"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/goroutine"
	"github.com/ignatzorin/petmeet-backend/internal/logger"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
)

const (
	DefaultInterval  = 5 * time.Minute
	DefaultBatchSize = 100
	DefaultLockTTL   = 4 * time.Minute

	lockKey       = "petmeet:sweeper:lock"
	notifyTimeout = 10 * time.Second
)

var ErrAlreadyRunning = errors.New("sweeper: уже запущен")

type Config struct {
	Interval  time.Duration
	BatchSize int
	LockTTL   time.Duration
}

// Locker - распределённая блокировка, чтобы проход выполняла только одна реплика.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

type PassResult struct {
	Expired   int
	NoShow    int
	Completed int
	Failed    int

	// Skipped - блокировку держит другая реплика.
	Skipped bool
}

func (r PassResult) Total() int {
	return r.Expired + r.NoShow + r.Completed
}

type Sweeper struct {
	appointments repository.AppointmentRepository
	notifier     repository.Notifier
	clock        clock.Clock
	locker       Locker
	cfg          Config

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Sweeper)

func WithLocker(l Locker) Option {
	return func(s *Sweeper) { s.locker = l }
}

func New(appointments repository.AppointmentRepository, notifier repository.Notifier, clk clock.Clock, cfg Config, opts ...Option) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	s := &Sweeper{
		appointments: appointments,
		notifier:     notifier,
		clock:        clk,
		cfg:          cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start запускает периодические проходы в фоне. Первый проход выполняется сразу.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	goroutine.SafeGoWithContext(runCtx, func(ctx context.Context) {
		defer close(done)
		s.run(ctx)
	})

	logger.Log.WithFields(logrus.Fields{
		"interval":   s.cfg.Interval.String(),
		"batch_size": s.cfg.BatchSize,
	}).Info("Свипер встреч запущен")
	return nil
}

// Stop останавливает свипер и ждёт завершения текущего прохода.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logger.Log.Info("Свипер встреч остановлен")
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		// Паника в одном проходе не должна останавливать цикл.
		goroutine.Run("Panic in sweeper pass", func() {
			if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Log.WithError(err).Error("Проход свипера завершился с ошибкой")
			}
		})
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type sweep struct {
	name   string
	status valueobject.AppointmentStatus
	cutoff time.Time
	apply  func(*entity.Appointment, time.Time) error
	notice valueobject.NotificationType
	title  string
	text   string
}

// RunOnce выполняет три независимых прохода. Ошибка одной записи не мешает остальным.
func (s *Sweeper) RunOnce(ctx context.Context) (PassResult, error) {
	var result PassResult

	if s.locker != nil {
		release, acquired, err := s.locker.TryLock(ctx, lockKey, s.cfg.LockTTL)
		if err != nil {
			return result, err
		}
		if !acquired {
			result.Skipped = true
			return result, nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Log.WithError(err).Warn("Не удалось снять блокировку свипера")
			}
		}()
	}

	now := s.clock.Now()
	sweeps := []struct {
		sweep
		counter *int
	}{
		{sweep{
			name:   "expire",
			status: valueobject.AppointmentStatusPending,
			cutoff: now,
			apply:  (*entity.Appointment).Expire,
			notice: valueobject.NotificationAppointmentExpired,
			title:  "Приглашение истекло",
			text:   "Время встречи наступило, а приглашение так и не подтвердили.",
		}, &result.Expired},
		{sweep{
			name:   "no_show",
			status: valueobject.AppointmentStatusConfirmed,
			cutoff: now.Add(-entity.NoShowGrace),
			apply:  (*entity.Appointment).MarkNoShow,
			notice: valueobject.NotificationAppointmentNoShow,
			title:  "Встреча не состоялась",
			text:   "Никто не отметился на месте встречи.",
		}, &result.NoShow},
		{sweep{
			name:   "auto_complete",
			status: valueobject.AppointmentStatusOnGoing,
			cutoff: now.Add(-entity.NoShowGrace),
			apply:  (*entity.Appointment).AutoComplete,
			notice: valueobject.NotificationAppointmentCompleted,
			title:  "Встреча завершена",
			text:   "Спасибо за встречу! Расскажите, как всё прошло.",
		}, &result.Completed},
	}

	var errs []error
	for _, sw := range sweeps {
		done, failed, err := s.runSweep(ctx, sw.sweep, now)
		*sw.counter += done
		result.Failed += failed
		if err != nil {
			errs = append(errs, err)
		}
	}

	if result.Total() > 0 || result.Failed > 0 {
		logger.Log.WithFields(logrus.Fields{
			"expired":   result.Expired,
			"no_show":   result.NoShow,
			"completed": result.Completed,
			"failed":    result.Failed,
		}).Info("Проход свипера завершён")
	}
	return result, errors.Join(errs...)
}

// runSweep переводит не больше BatchSize встреч. Выборка идёт страницами по (appointment_at, id),
// поэтому записи, которые не удаётся обновить, не загораживают остальные.
func (s *Sweeper) runSweep(ctx context.Context, sw sweep, now time.Time) (done, failed int, err error) {
	var cursor *repository.DueCursor
	for done < s.cfg.BatchSize {
		candidates, err := s.appointments.FindDue(ctx, sw.status, sw.cutoff, cursor, s.cfg.BatchSize)
		if err != nil {
			return done, failed, err
		}

		for _, candidate := range candidates {
			if ctx.Err() != nil {
				return done, failed, ctx.Err()
			}
			if done >= s.cfg.BatchSize {
				return done, failed, nil
			}

			updated, err := s.appointments.UpdateLocked(ctx, candidate.ID, func(a *entity.Appointment) error {
				return sw.apply(a, now)
			})
			if err != nil {
				// Участник успел изменить встречу между выборкой и блокировкой.
				if apperror.IsInvalidState(err) {
					continue
				}
				failed++
				logger.Log.WithFields(logrus.Fields{
					"sweep":          sw.name,
					"appointment_id": candidate.ID,
				}).WithError(err).Error("Не удалось обновить встречу")
				continue
			}

			done++
			s.notifyBoth(ctx, updated, sw)
		}

		if len(candidates) < s.cfg.BatchSize {
			break
		}
		last := candidates[len(candidates)-1]
		cursor = &repository.DueCursor{At: last.AppointmentAt, ID: last.ID}
	}
	return done, failed, nil
}

// notifyBoth отправляет уведомления в отдельных горутинах после сохранения.
// Ошибки и паники доставки только логируются.
func (s *Sweeper) notifyBoth(ctx context.Context, a *entity.Appointment, sw sweep) {
	if s.notifier == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	for _, userID := range []uuid.UUID{a.InviterUserID, a.InviteeUserID} {
		goroutine.SafeGo(func() {
			notifyCtx, cancel := context.WithTimeout(base, notifyTimeout)
			defer cancel()
			if err := s.notifier.Notify(notifyCtx, userID, sw.title, sw.text, string(sw.notice)); err != nil {
				logger.Log.WithFields(logrus.Fields{
					"sweep":          sw.name,
					"appointment_id": a.ID,
					"user_id":        userID,
				}).WithError(err).Warn("Не удалось отправить уведомление")
			}
		})
	}
}
