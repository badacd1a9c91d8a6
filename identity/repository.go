package identity

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/heatloop/go-authstate"
)

// Profiles is the profile repository surface.
type Profiles interface {
	repository.Repository[*Profile]
}

// Subscriptions extends the generic repository with the profile-scoped
// lookup used for subscription record queries.
type Subscriptions interface {
	repository.Repository[*Subscription]

	GetByProfile(ctx context.Context, profileID uuid.UUID) (*Subscription, error)
	GetByProfileTx(ctx context.Context, tx bun.IDB, profileID uuid.UUID) (*Subscription, error)
}

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Profiles() Profiles
	Subscriptions() Subscriptions
}

type profiles struct {
	repository.Repository[*Profile]
}

// CreateTx fills row defaults before delegating to the generic repository.
func (p *profiles) CreateTx(ctx context.Context, tx bun.IDB, record *Profile, criteria ...repository.InsertCriteria) (*Profile, error) {
	prepareProfileDefaults(record)
	return p.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (p *profiles) Create(ctx context.Context, record *Profile, criteria ...repository.InsertCriteria) (*Profile, error) {
	prepareProfileDefaults(record)
	return p.Repository.Create(ctx, record, criteria...)
}

func prepareProfileDefaults(record *Profile) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = string(authstate.RoleUser)
	}

	if record.Provider == "" {
		record.Provider = ProviderPassword
	}

	if record.ID == uuid.Nil {
		// Derive a stable subject id from the email so repeated imports of
		// the same account agree on identity.
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}
}

func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository(db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile {
			return &Profile{}
		},
		GetID: func(record *Profile) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Profile, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &profiles{Repository: repo}
}

type subscriptions struct {
	repository.Repository[*Subscription]
	db *bun.DB
}

func NewSubscriptionsRepository(db *bun.DB) Subscriptions {
	repo := repository.NewRepository(db, repository.ModelHandlers[*Subscription]{
		NewRecord: func() *Subscription {
			return &Subscription{}
		},
		GetID: func(record *Subscription) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Subscription, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
	})

	return &subscriptions{
		Repository: repo,
		db:         db,
	}
}

func (s *subscriptions) CreateTx(ctx context.Context, tx bun.IDB, record *Subscription, criteria ...repository.InsertCriteria) (*Subscription, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return s.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (s *subscriptions) Create(ctx context.Context, record *Subscription, criteria ...repository.InsertCriteria) (*Subscription, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return s.Repository.Create(ctx, record, criteria...)
}

func (s *subscriptions) GetByProfile(ctx context.Context, profileID uuid.UUID) (*Subscription, error) {
	return s.GetByProfileTx(ctx, s.db, profileID)
}

func (s *subscriptions) GetByProfileTx(ctx context.Context, tx bun.IDB, profileID uuid.UUID) (*Subscription, error) {
	record := &Subscription{}
	err := tx.NewSelect().
		Model(record).
		Where("profile_id = ?", profileID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"profile_id": profileID.String(),
				})
		}
		return nil, err
	}
	return record, nil
}

type mngr struct {
	db            *bun.DB
	profiles      Profiles
	subscriptions Subscriptions
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:            db,
		profiles:      NewProfilesRepository(db),
		subscriptions: NewSubscriptionsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.profiles == nil {
		return errors.New("repository profiles should be initialized")
	}

	if m.subscriptions == nil {
		return errors.New("repository subscriptions should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Profiles() Profiles {
	return m.profiles
}

func (m mngr) Subscriptions() Subscriptions {
	return m.subscriptions
}

// CreateSchema creates the identity tables. Used by tests and the example
// app; real deployments run migrations instead.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*Profile)(nil),
		(*Subscription)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
