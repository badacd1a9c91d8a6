package identity

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"

	"github.com/heatloop/go-authstate"
)

// SignUpPayload is the validated shape of a registration request.
type SignUpPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// Validate will run validation rules
func (p SignUpPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&p.Phone, validation.By(validateOptionalPhone)),
	)
}

// DefaultPhoneRegion is assumed for phone numbers submitted without a
// country prefix.
var DefaultPhoneRegion = "US"

func validateOptionalPhone(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}

	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil {
		return err
	}

	if !phonenumbers.IsValidNumber(num) {
		return validation.NewError("validation_phone_invalid", "must be a valid phone number")
	}

	return nil
}

// register creates the profile plus its trial subscription in one
// transaction. The subject id is derived deterministically from the email so
// repeated imports stay stable.
func (s *Service) register(ctx context.Context, payload SignUpPayload) error {
	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.Profiles().GetByIdentifierTx(ctx, tx, payload.Email); err == nil {
			return authstate.ErrRegistrationRejected.WithMetadata(map[string]any{
				"email": payload.Email,
			})
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing profile")
		}

		hash, err := HashPassword(payload.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		profile := &Profile{
			Name:         payload.Name,
			Email:        payload.Email,
			Phone:        payload.Phone,
			Role:         string(authstate.RoleUser),
			PasswordHash: hash,
			Provider:     ProviderPassword,
		}

		if id, err := hashid.NewUUID(payload.Email); err == nil {
			profile.ID = id
		}

		if profile, err = s.repo.Profiles().CreateTx(ctx, tx, profile); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create profile")
		}

		sub := NewTrialSubscription(profile.ID, time.Now())
		if _, err = s.repo.Subscriptions().CreateTx(ctx, tx, sub); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create trial subscription")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "registration transaction failed")
	}

	return nil
}
