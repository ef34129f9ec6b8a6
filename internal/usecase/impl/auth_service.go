package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bazaar/config"
	deliverycontext "bazaar/internal/delivery/context"
	"bazaar/internal/domain/entity"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/repository"
	"bazaar/internal/domain/service"
	"bazaar/internal/errors"
	"bazaar/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	defaultAdminName = "Administrator"
	timingPassword   = "bazaar-unknown-identity"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	identityRepo repository.IdentityRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	bootstrap    *config.BootstrapAdminConfig
	storeTimeout time.Duration
	dummyHash    string
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	IdentityRepo repository.IdentityRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) (usecase.AuthUsecase, error) {
	dummyHash, err := params.Hasher.Hash(timingPassword)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare credential check")
	}

	var bootstrap *config.BootstrapAdminConfig
	if params.Config != nil && params.Config.Auth != nil {
		bootstrap = params.Config.Auth.BootstrapAdmin
	}

	return &authService{
		txManager:    params.TxManager,
		identityRepo: params.IdentityRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		bootstrap:    bootstrap,
		storeTimeout: storeTimeout(params.Config),
		dummyHash:    dummyHash,
		logger:       params.Logger,
	}, nil
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Authenticate handles the business logic for identity login.
func (srv *authService) Authenticate(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	email := normalizeEmail(input.Email)

	storeCtx, cancel := withStoreTimeout(ctx, srv.storeTimeout)
	identity, err := srv.identityRepo.FindByEmail(storeCtx, email)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			// Same cost as a wrong password.
			srv.hasher.Check(input.Password, srv.dummyHash)
			srv.log(ctx).Info("Login rejected", slog.String("reason", "unknown email"))

			return nil, domainerrors.ErrInvalidCredentials
		}
		srv.log(ctx).Error("Failed to look up identity", slog.Any("error", err))

		return nil, storeError(err, "failed to look up identity")
	}

	if !srv.hasher.Check(input.Password, identity.PasswordHash) {
		srv.log(ctx).Info("Login rejected",
			slog.String("reason", "wrong password"),
			slog.String("identity_id", identity.ID.String()),
		)

		return nil, domainerrors.ErrInvalidCredentials
	}

	return srv.issue(ctx, identity)
}

// Register handles the business logic for student and artisan sign-up.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	identity, err := newIdentity(input)
	if err != nil {
		return nil, err
	}

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		return nil, err
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}
	identity.PasswordHash = hash

	storeCtx, cancel := withStoreTimeout(ctx, srv.storeTimeout)
	defer cancel()

	err = srv.txManager.Execute(storeCtx, func(repoFactory repository.RepositoryFactory) error {
		identities := repoFactory.NewIdentityRepository()

		_, err := identities.FindByEmail(storeCtx, identity.Email)
		switch {
		case err == nil:
			return domainerrors.ErrDuplicateEmail
		case !errors.Is(err, repository.ErrIdentityNotFound):
			return storeError(err, "failed to check email")
		}

		if err := identities.Create(storeCtx, identity); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicateEmail):
				return domainerrors.ErrDuplicateEmail
			case errors.Is(err, repository.ErrInvalidValue):
				return domainerrors.ErrValidationFailed.WithDetails(err.Error())
			default:
				return storeError(err, "failed to create identity")
			}
		}

		return nil
	})
	if err != nil {
		if domainerrors.IsStorageUnavailable(err) {
			srv.log(ctx).Error("Failed to register identity", slog.Any("error", err))
		}

		return nil, storeError(err, "failed to register identity")
	}

	srv.log(ctx).Info("Identity registered",
		slog.String("identity_id", identity.ID.String()),
		slog.String("role", identity.Role.String()),
	)

	return srv.issue(ctx, identity)
}

// Authorize resolves the caller from a token without touching the store.
func (srv *authService) Authorize(ctx context.Context, token string, requiredRole entity.Role) (*entity.Identity, error) {
	claims, err := srv.tokenService.Verify(token)
	if err != nil {
		srv.log(ctx).Debug("Token rejected", slog.Any("error", err))

		return nil, domainerrors.ErrUnauthenticated
	}

	role := entity.Role(claims.Role)
	if !role.IsValid() {
		return nil, domainerrors.ErrUnauthenticated
	}

	if requiredRole != "" && role != requiredRole {
		return nil, domainerrors.ErrInsufficientRole
	}

	return identityFromClaims(claims), nil
}

// EnsureBootstrapAdmin creates the configured administrator when its email is free.
func (srv *authService) EnsureBootstrapAdmin(ctx context.Context) error {
	if srv.bootstrap == nil || strings.TrimSpace(srv.bootstrap.Email) == "" {
		return nil
	}
	if srv.bootstrap.Password == "" {
		return errors.New("bootstrap admin password is required")
	}

	hash, err := srv.hasher.Hash(srv.bootstrap.Password)
	if err != nil {
		return errors.Wrap(err, "failed to hash bootstrap admin password")
	}

	fullName := strings.TrimSpace(srv.bootstrap.FullName)
	if fullName == "" {
		fullName = defaultAdminName
	}

	admin := &entity.Identity{
		ID:           uuid.New(),
		Email:        normalizeEmail(srv.bootstrap.Email),
		FullName:     fullName,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
	}

	storeCtx, cancel := withStoreTimeout(ctx, srv.storeTimeout)
	defer cancel()

	if err := srv.identityRepo.Create(storeCtx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			srv.log(ctx).Info("Bootstrap admin already exists")

			return nil
		}

		return storeError(err, "failed to create bootstrap admin")
	}

	srv.log(ctx).Info("Bootstrap admin created", slog.String("identity_id", admin.ID.String()))

	return nil
}

func (srv *authService) issue(ctx context.Context, identity *entity.Identity) (*usecase.AuthOutput, error) {
	token, err := srv.tokenService.Issue(claimsFor(identity), srv.tokenService.TTL())
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue token")
	}

	return &usecase.AuthOutput{
		Identity: identity,
		Token:    token,
	}, nil
}

// newIdentity validates the sign-up input and builds the identity to persist.
func newIdentity(input *usecase.RegisterInput) (*entity.Identity, error) {
	if !input.Role.IsSelfRegistrable() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("role must be student or artisan")
	}

	identity := &entity.Identity{
		ID:       uuid.New(),
		Email:    normalizeEmail(input.Email),
		FullName: strings.TrimSpace(input.FullName),
		Role:     input.Role,
		Phone:    strings.TrimSpace(input.Phone),
	}

	fields := []requiredField{
		{"email", identity.Email},
		{"password", input.Password},
		{"fullName", identity.FullName},
	}

	switch input.Role {
	case entity.RoleStudent:
		identity.Student = &entity.StudentProfile{
			StudentID:  strings.TrimSpace(input.StudentID),
			Department: strings.TrimSpace(input.Department),
			Level:      strings.TrimSpace(input.Level),
		}
		fields = append(fields,
			requiredField{"studentId", identity.Student.StudentID},
			requiredField{"department", identity.Student.Department},
			requiredField{"level", identity.Student.Level},
		)
	case entity.RoleArtisan:
		identity.Provider = entity.NewProvider(
			identity.ID,
			strings.TrimSpace(input.BusinessName),
			strings.TrimSpace(input.Location),
			strings.TrimSpace(input.Specialization),
			strings.TrimSpace(input.Experience),
		)
		fields = append(fields,
			requiredField{"businessName", identity.Provider.BusinessName},
			requiredField{"location", identity.Provider.Location},
			requiredField{"specialization", identity.Provider.Specialization},
			requiredField{"experience", identity.Provider.Experience},
		)
	}

	if missing := missingFields(fields); len(missing) > 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("missing required fields: " + strings.Join(missing, ", "))
	}

	return identity, nil
}

type requiredField struct {
	name  string
	value string
}

func missingFields(fields []requiredField) []string {
	var missing []string
	for _, field := range fields {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}

	return missing
}

func claimsFor(identity *entity.Identity) *service.Claims {
	claims := &service.Claims{
		ID:       identity.ID,
		Email:    identity.Email,
		FullName: identity.FullName,
		Role:     identity.Role.String(),
		OptionalClaims: service.OptionalClaims{
			Phone: identity.Phone,
		},
	}

	if identity.Student != nil {
		claims.StudentID = identity.Student.StudentID
		claims.Department = identity.Student.Department
		claims.Level = identity.Student.Level
	}
	if identity.Provider != nil {
		claims.BusinessName = identity.Provider.BusinessName
		claims.Location = identity.Provider.Location
		claims.Specialization = identity.Provider.Specialization
	}

	return claims
}

// identityFromClaims rebuilds the caller from its token. The provider's
// verification pair is not part of the claims and stays zero.
func identityFromClaims(claims *service.Claims) *entity.Identity {
	identity := &entity.Identity{
		ID:       claims.ID,
		Email:    claims.Email,
		FullName: claims.FullName,
		Role:     entity.Role(claims.Role),
		Phone:    claims.Phone,
	}

	switch identity.Role {
	case entity.RoleStudent:
		identity.Student = &entity.StudentProfile{
			StudentID:  claims.StudentID,
			Department: claims.Department,
			Level:      claims.Level,
		}
	case entity.RoleArtisan:
		identity.Provider = &entity.Provider{
			IdentityID:     claims.ID,
			BusinessName:   claims.BusinessName,
			Location:       claims.Location,
			Specialization: claims.Specialization,
		}
	}

	return identity
}
