// Package clock задаёт единственный источник "текущего времени" для обработчиков и фонового свипера.
package clock

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Clock возвращает текущее время в каноническом часовом поясе.
type Clock interface {
	Now() time.Time
}

// ZoneClock - системные часы, приведённые к часовому поясу приложения.
type ZoneClock struct {
	loc *time.Location
}

// NewZoneClock загружает часовой пояс по имени IANA (например, Asia/Taipei).
func NewZoneClock(tz string) (*ZoneClock, error) {
	if strings.TrimSpace(tz) == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("clock: неизвестный часовой пояс %q: %w", tz, err)
	}
	return &ZoneClock{loc: loc}, nil
}

func (c *ZoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *ZoneClock) Location() *time.Location {
	return c.loc
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseLocal разбирает время из запроса. Значения со смещением (RFC3339) берутся как есть,
// значения без смещения трактуются как локальное время в loc.
func ParseLocal(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("clock: некорректный формат времени %q", value)
}

// Manual - управляемые часы для тестов и локальных прогонов свипера.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Set(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
