package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/petmeet-backend/internal/domain/entity"
	"github.com/ignatzorin/petmeet-backend/internal/domain/repository"
	"github.com/ignatzorin/petmeet-backend/internal/pkg/apperror"
	"github.com/ignatzorin/petmeet-backend/internal/usecase/location"
)

// LocationChoice - либо существующее место, либо данные нового.
type LocationChoice struct {
	ID  *uuid.UUID
	New *location.CreateLocationInput
}

type locationResolver struct {
	locations repository.LocationRepository
	creator   *location.CreateLocationUseCase
}

// resolve возвращает место и признак того, что оно было создано сейчас.
func (r locationResolver) resolve(ctx context.Context, choice *LocationChoice, actorID uuid.UUID) (*entity.Location, bool, error) {
	if choice == nil || (choice.ID == nil && choice.New == nil) {
		return nil, false, nil
	}
	if choice.ID != nil && choice.New != nil {
		return nil, false, apperror.New(apperror.ErrCodeValidation, "укажите либо location_id, либо данные нового места")
	}

	if choice.ID != nil {
		loc, err := r.locations.FindByID(ctx, *choice.ID)
		if err != nil {
			return nil, false, err
		}
		return loc, false, nil
	}

	input := *choice.New
	input.CreatedBy = &actorID
	result, err := r.creator.Execute(ctx, input)
	if err != nil {
		return nil, false, err
	}
	return result.Location, result.Created, nil
}
