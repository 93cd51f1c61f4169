package entity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
)

// Match - принятая пара из сервиса подбора. Только для чтения.
type Match struct {
	ID      uuid.UUID
	UserAID uuid.UUID
	UserBID uuid.UUID
	PetAID  uuid.UUID
	PetBID  uuid.UUID
	Status  valueobject.MatchStatus
}

func (m *Match) IsAccepted() bool {
	return m.Status == valueobject.MatchStatusAccepted
}

func (m *Match) HasPet(petID uuid.UUID) bool {
	return m.PetAID == petID || m.PetBID == petID
}

func (m *Match) HasUser(userID uuid.UUID) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// PetProfile - анкета питомца из сервиса профилей. Только для чтения.
type PetProfile struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	Species    string
	Breed      string
	PhotoCount int
}

// IsComplete: есть имя, вид или порода, хотя бы одно фото.
func (p *PetProfile) IsComplete() bool {
	if strings.TrimSpace(p.Name) == "" {
		return false
	}
	if strings.TrimSpace(p.Species) == "" && strings.TrimSpace(p.Breed) == "" {
		return false
	}
	return p.PhotoCount >= 1
}
