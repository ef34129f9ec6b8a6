package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"bazaar/config"
	"bazaar/internal/domain/entity"
	"bazaar/internal/domain/repository"
	"bazaar/internal/domain/service"
	"bazaar/internal/errors"
	"bazaar/internal/infra/auth"
	"bazaar/internal/infra/persistence/memory"
	"bazaar/internal/infra/qrcode"
	"bazaar/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testPassword = "Password123!"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
			Digest:   auth.DigestSHA256,
		},
		PasswordStrength: &config.PasswordStrengthConfig{
			MinLength: 8,
		},
		Storage: &config.StorageConfig{
			Driver:  "memory",
			Timeout: time.Second,
		},
	}
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishVerificationReviewed(ctx context.Context, event *service.VerificationReviewedEvent) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

// serviceFixtures wires the use cases to an in-memory store and the real
// hasher, token service and badge renderer.
type serviceFixtures struct {
	store         *memory.Store
	txManager     repository.TransactionManager
	identities    repository.IdentityRepository
	verifications repository.VerificationRepository
	hasher        service.PasswordHasher
	tokens        service.TokenService
	publisher     *mockPublisher
	auth          usecase.AuthUsecase
	verification  usecase.VerificationUsecase
	profile       usecase.ProfileUsecase
}

type fixtureOption func(*fixtureSettings)

type fixtureSettings struct {
	cfg           *config.Config
	identities    func(repository.IdentityRepository) repository.IdentityRepository
	verifications func(repository.VerificationRepository) repository.VerificationRepository
	txIdentities  func(repository.IdentityRepository) repository.IdentityRepository
}

func withConfig(mutate func(*config.Config)) fixtureOption {
	return func(s *fixtureSettings) {
		mutate(s.cfg)
	}
}

func withVerificationRepo(wrap func(repository.VerificationRepository) repository.VerificationRepository) fixtureOption {
	return func(s *fixtureSettings) {
		s.verifications = wrap
	}
}

func withIdentityRepo(wrap func(repository.IdentityRepository) repository.IdentityRepository) fixtureOption {
	return func(s *fixtureSettings) {
		s.identities = wrap
	}
}

// withTxIdentityRepo wraps the identity repository handed out inside transactions.
func withTxIdentityRepo(wrap func(repository.IdentityRepository) repository.IdentityRepository) fixtureOption {
	return func(s *fixtureSettings) {
		s.txIdentities = wrap
	}
}

type wrappingTxManager struct {
	repository.TransactionManager
	identities func(repository.IdentityRepository) repository.IdentityRepository
}

func (m wrappingTxManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return m.TransactionManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return fn(wrappingRepoFactory{RepositoryFactory: repoFactory, identities: m.identities})
	})
}

type wrappingRepoFactory struct {
	repository.RepositoryFactory
	identities func(repository.IdentityRepository) repository.IdentityRepository
}

func (f wrappingRepoFactory) NewIdentityRepository() repository.IdentityRepository {
	return f.identities(f.RepositoryFactory.NewIdentityRepository())
}

func createTestServices(t *testing.T, opts ...fixtureOption) serviceFixtures {
	t.Helper()

	settings := &fixtureSettings{cfg: newTestConfig()}
	for _, opt := range opts {
		opt(settings)
	}
	cfg := settings.cfg
	logger := newDiscardLogger()

	store := memory.NewStore()
	txManager := memory.NewTransactionManager(store)
	if settings.txIdentities != nil {
		txManager = wrappingTxManager{TransactionManager: txManager, identities: settings.txIdentities}
	}
	identities := memory.NewIdentityRepository(store)
	verifications := memory.NewVerificationRepository(store)
	if settings.identities != nil {
		identities = settings.identities(identities)
	}
	if settings.verifications != nil {
		verifications = settings.verifications(verifications)
	}

	hasher, err := auth.NewSaltedHasher(cfg.Auth.Digest, cfg.PasswordStrength)
	require.NoError(t, err)
	tokens, err := auth.NewHMACTokenService(testSecret, cfg.Auth.TokenTTL)
	require.NoError(t, err)

	publisher := &mockPublisher{}
	t.Cleanup(func() { publisher.AssertExpectations(t) })

	authService, err := NewAuthService(AuthServiceParams{
		TxManager:    txManager,
		IdentityRepo: identities,
		Hasher:       hasher,
		TokenService: tokens,
		Config:       cfg,
		Logger:       logger,
	})
	require.NoError(t, err)

	return serviceFixtures{
		store:         store,
		txManager:     txManager,
		identities:    identities,
		verifications: verifications,
		hasher:        hasher,
		tokens:        tokens,
		publisher:     publisher,
		auth:          authService,
		verification: NewVerificationService(VerificationServiceParams{
			TxManager:        txManager,
			IdentityRepo:     identities,
			VerificationRepo: verifications,
			Publisher:        publisher,
			QRCodeService:    qrcode.NewQRCodeService(256, "medium", "https://bazaar.example"),
			Config:           cfg,
			Logger:           logger,
		}),
		profile: NewProfileService(ProfileServiceParams{
			TxManager:    txManager,
			IdentityRepo: identities,
			Config:       cfg,
			Logger:       logger,
		}),
	}
}

func studentInput(email string) *usecase.RegisterInput {
	return &usecase.RegisterInput{
		Email:      email,
		Password:   testPassword,
		FullName:   "Ada Student",
		Role:       entity.RoleStudent,
		StudentID:  "CSC/2021/001",
		Department: "Computer Science",
		Level:      "300",
	}
}

func artisanInput(email string) *usecase.RegisterInput {
	return &usecase.RegisterInput{
		Email:          email,
		Password:       testPassword,
		FullName:       "Tunde Tailor",
		Role:           entity.RoleArtisan,
		Phone:          "+2348000000000",
		BusinessName:   "Tunde Stitches",
		Location:       "Hall 3",
		Specialization: "Tailoring",
		Experience:     "5 years",
	}
}

func (f serviceFixtures) registerArtisan(t *testing.T, email string) *entity.Identity {
	t.Helper()

	out, err := f.auth.Register(context.Background(), artisanInput(email))
	require.NoError(t, err)

	return out.Identity
}

func (f serviceFixtures) createAdmin(t *testing.T) *entity.Identity {
	t.Helper()

	hash, err := f.hasher.Hash(testPassword)
	require.NoError(t, err)

	admin := &entity.Identity{
		ID:           uuid.New(),
		Email:        "admin-" + uuid.NewString()[:8] + "@bazaar.test",
		FullName:     "Admin",
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
	}
	require.NoError(t, f.identities.Create(context.Background(), admin))

	return admin
}

func (f serviceFixtures) submit(t *testing.T, providerID uuid.UUID) *entity.VerificationRequest {
	t.Helper()

	request, err := f.verification.Submit(context.Background(), &usecase.SubmitVerificationInput{
		ProviderID: providerID,
		Evidence: []entity.EvidenceArtifact{
			{URL: "https://files.bazaar.test/cert.pdf", Kind: entity.EvidenceCertificate},
		},
	})
	require.NoError(t, err)

	return request
}

// blockingIdentityRepo holds every lookup until the caller's context ends.
type blockingIdentityRepo struct {
	repository.IdentityRepository
}

func (r blockingIdentityRepo) FindByEmail(ctx context.Context, _ string) (*entity.Identity, error) {
	<-ctx.Done()

	return nil, ctx.Err()
}

func (r blockingIdentityRepo) FindProvider(ctx context.Context, _ uuid.UUID) (*entity.Provider, error) {
	<-ctx.Done()

	return nil, ctx.Err()
}

// rejectingIdentityRepo fails writes the way the store reports a value that
// does not fit its column.
type rejectingIdentityRepo struct {
	repository.IdentityRepository
}

func (r rejectingIdentityRepo) Create(context.Context, *entity.Identity) error {
	return errors.Wrap(repository.ErrInvalidValue, "column full_name: value too long for type character varying(100)")
}

func (r rejectingIdentityRepo) UpdateProfile(context.Context, *entity.Identity) error {
	return errors.Wrap(repository.ErrInvalidValue, "column full_name: value too long for type character varying(100)")
}
