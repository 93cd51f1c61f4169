package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmeet-backend/internal/domain/repository"
	"github.com/ignatzorin/petmeet-backend/internal/domain/valueobject"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
)

const (
	MinMessagesPerParticipant = 3
	MinMessagesTotal          = 10
)

// EligibilityCode - машинный код причины, по которой встречу назначить нельзя.
type EligibilityCode string

const (
	EligibilitySamePet           EligibilityCode = "SAME_PET"
	EligibilityMatchNotFound     EligibilityCode = "MATCH_NOT_FOUND"
	EligibilityMatchNotAccepted  EligibilityCode = "MATCH_NOT_ACCEPTED"
	EligibilityPetNotInMatch     EligibilityCode = "PET_NOT_IN_MATCH"
	EligibilityActiveAppointment EligibilityCode = "ACTIVE_APPOINTMENT_EXISTS"
	EligibilityNotEnoughMessages EligibilityCode = "NOT_ENOUGH_MESSAGES"
	EligibilityIncompleteProfile EligibilityCode = "INCOMPLETE_PROFILE"
)

type EligibilityResult struct {
	OK     bool
	Code   EligibilityCode
	Reason string

	// Заполняются, когда мэтч найден и питомцы ему принадлежат.
	InviterUserID uuid.UUID
	InviteeUserID uuid.UUID
}

func ineligible(code EligibilityCode, reason string) *EligibilityResult {
	return &EligibilityResult{Code: code, Reason: reason}
}

// EligibilityGate проверяет, можно ли участникам мэтча назначить новую встречу.
// Ничего не изменяет.
type EligibilityGate struct {
	matches      repository.MatchReader
	messages     repository.MessageCounter
	pets         repository.PetProfileReader
	appointments repository.AppointmentRepository
}

func NewEligibilityGate(
	matches repository.MatchReader,
	messages repository.MessageCounter,
	pets repository.PetProfileReader,
	appointments repository.AppointmentRepository,
) *EligibilityGate {
	return &EligibilityGate{
		matches:      matches,
		messages:     messages,
		pets:         pets,
		appointments: appointments,
	}
}

// ValidatePreConditions останавливается на первой непройденной проверке.
// Ошибка возвращается только при сбое хранилища.
func (g *EligibilityGate) ValidatePreConditions(ctx context.Context, matchID, inviterPetID, inviteePetID uuid.UUID) (*EligibilityResult, error) {
	if inviterPetID == inviteePetID {
		return ineligible(EligibilitySamePet, "нельзя назначить встречу питомцу с самим собой"), nil
	}

	match, err := g.matches.FindByID(ctx, matchID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return ineligible(EligibilityMatchNotFound, "мэтч не найден"), nil
		}
		return nil, err
	}
	if !match.IsAccepted() {
		return ineligible(EligibilityMatchNotAccepted, "мэтч ещё не подтверждён обеими сторонами"), nil
	}
	if !match.HasPet(inviterPetID) || !match.HasPet(inviteePetID) {
		return ineligible(EligibilityPetNotInMatch, "питомцы не относятся к этому мэтчу"), nil
	}

	result := &EligibilityResult{OK: true}
	if match.PetAID == inviterPetID {
		result.InviterUserID, result.InviteeUserID = match.UserAID, match.UserBID
	} else {
		result.InviterUserID, result.InviteeUserID = match.UserBID, match.UserAID
	}

	exists, err := g.appointments.ExistsForMatch(ctx, matchID, valueobject.ActiveAppointmentStatuses)
	if err != nil {
		return nil, err
	}
	if exists {
		return ineligible(EligibilityActiveAppointment, "у этого мэтча уже есть активная встреча"), nil
	}

	counts, err := g.messages.CountByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	inviterSent, inviteeSent := counts[result.InviterUserID], counts[result.InviteeUserID]
	if inviterSent < MinMessagesPerParticipant || inviteeSent < MinMessagesPerParticipant || inviterSent+inviteeSent < MinMessagesTotal {
		return ineligible(EligibilityNotEnoughMessages, fmt.Sprintf(
			"пообщайтесь в чате ещё немного: нужно не меньше %d сообщений от каждого и %d всего",
			MinMessagesPerParticipant, MinMessagesTotal,
		)), nil
	}

	for _, petID := range []uuid.UUID{inviterPetID, inviteePetID} {
		pet, err := g.pets.FindByID(ctx, petID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return ineligible(EligibilityIncompleteProfile, "анкета питомца не найдена"), nil
			}
			return nil, err
		}
		if !pet.IsComplete() {
			return ineligible(EligibilityIncompleteProfile, fmt.Sprintf(
				"анкета питомца %q не заполнена: нужны имя, вид или порода и хотя бы одно фото", pet.Name,
			)), nil
		}
	}

	return result, nil
}

// asError переводит отказ в ошибку для операций, которые не могут продолжиться.
func (r *EligibilityResult) asError() error {
	switch r.Code {
	case EligibilityMatchNotFound:
		return apperror.ErrMatchNotFound
	case EligibilityActiveAppointment:
		return apperror.New(apperror.ErrCodeInvalidState, r.Reason)
	default:
		return apperror.New(apperror.ErrCodeValidation, r.Reason)
	}
}

type CheckEligibilityInput struct {
	MatchID      uuid.UUID
	ActorID      uuid.UUID
	InviterPetID uuid.UUID
	InviteePetID uuid.UUID
}

// CheckEligibilityUseCase - проверка для клиента перед показом формы создания встречи.
type CheckEligibilityUseCase struct {
	matches repository.MatchReader
	gate    *EligibilityGate
}

func NewCheckEligibilityUseCase(matches repository.MatchReader, gate *EligibilityGate) *CheckEligibilityUseCase {
	return &CheckEligibilityUseCase{matches: matches, gate: gate}
}

func (uc *CheckEligibilityUseCase) Execute(ctx context.Context, input CheckEligibilityInput) (*EligibilityResult, error) {
	if err := ensureMatchParticipant(ctx, uc.matches, input.MatchID, input.ActorID); err != nil {
		return nil, err
	}
	return uc.gate.ValidatePreConditions(ctx, input.MatchID, input.InviterPetID, input.InviteePetID)
}

func ensureMatchParticipant(ctx context.Context, matches repository.MatchReader, matchID, userID uuid.UUID) error {
	match, err := matches.FindByID(ctx, matchID)
	if err != nil {
		return err
	}
	if !match.HasUser(userID) {
		return apperror.New(apperror.ErrCodeForbidden, "вы не являетесь участником мэтча")
	}
	return nil
}
