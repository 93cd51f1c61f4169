package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
)

type MatchStore struct {
	mu      sync.Mutex
	matches map[uuid.UUID]*entity.Match
}

func NewMatchStore() *MatchStore {
	return &MatchStore{matches: make(map[uuid.UUID]*entity.Match)}
}

func (s *MatchStore) Put(m *entity.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *m
	s.matches[m.ID] = &c
}

func (s *MatchStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, apperror.ErrMatchNotFound
	}
	c := *m
	return &c, nil
}

type MessageCounts struct {
	mu     sync.Mutex
	counts map[uuid.UUID]map[uuid.UUID]int
}

func NewMessageCounts() *MessageCounts {
	return &MessageCounts{counts: make(map[uuid.UUID]map[uuid.UUID]int)}
}

func (s *MessageCounts) Set(matchID, senderID uuid.UUID, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.counts[matchID]; !ok {
		s.counts[matchID] = make(map[uuid.UUID]int)
	}
	s.counts[matchID][senderID] = count
}

func (s *MessageCounts) CountByMatch(ctx context.Context, matchID uuid.UUID) (map[uuid.UUID]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[uuid.UUID]int)
	for sender, n := range s.counts[matchID] {
		result[sender] = n
	}
	return result, nil
}

type PetStore struct {
	mu   sync.Mutex
	pets map[uuid.UUID]*entity.PetProfile
}

func NewPetStore() *PetStore {
	return &PetStore{pets: make(map[uuid.UUID]*entity.PetProfile)}
}

func (s *PetStore) Put(p *entity.PetProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.pets[p.ID] = &c
}

func (s *PetStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.PetProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pets[id]
	if !ok {
		return nil, apperror.ErrPetNotFound
	}
	c := *p
	return &c, nil
}

// Notification - одно отправленное уведомление.
type Notification struct {
	UserID  uuid.UUID
	Title   string
	Message string
	Type    string
}

// Notifier записывает уведомления. Если Err задан, Notify возвращает его после записи.
type Notifier struct {
	mu   sync.Mutex
	sent []Notification
	Err  error
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, title, message, notificationType string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{UserID: userID, Title: title, Message: message, Type: notificationType})
	return n.Err
}

func (n *Notifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.sent...)
}

// SentTo возвращает уведомления указанного типа для пользователя.
func (n *Notifier) SentTo(userID uuid.UUID, notificationType string) []Notification {
	var result []Notification
	for _, s := range n.Sent() {
		if s.UserID == userID && s.Type == notificationType {
			result = append(result, s)
		}
	}
	return result
}
