package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pharmaops-api/internal/application/dto"
	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/domain/repository"
	"github.com/jhoicas/pharmaops-api/internal/domain/tenant"
	"github.com/jhoicas/pharmaops-api/pkg/jwt"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

// PasswordCost costo bcrypt de las credenciales.
const PasswordCost = 12

// RegistrationTxRunner ejecuta la creación de tenant y usuario en una sola transacción.
type RegistrationTxRunner interface {
	RunRegistration(ctx context.Context, fn func(
		tenants repository.TenantRepository,
		users repository.UserRepository,
	) error) error
}

// TokenIssuer emite el token de sesión.
type TokenIssuer interface {
	Sign(id jwt.Identity) (string, error)
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo repository.UserRepository
	txRunner RegistrationTxRunner
	tokens   TokenIssuer
	log      *logger.Logger
	cost     int
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, txRunner RegistrationTxRunner, tokens TokenIssuer, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		txRunner: txRunner,
		tokens:   tokens,
		log:      log.Named("auth"),
		cost:     PasswordCost,
		now:      time.Now,
	}
}

// WithPasswordCost cambia el costo bcrypt (los tests usan bcrypt.MinCost).
func (uc *AuthUseCase) WithPasswordCost(cost int) *AuthUseCase {
	uc.cost = cost
	return uc
}

// Register crea la organización y su primer usuario.
// Email repetido -> domain.ErrEmailAlreadyExists; nombre sin caracteres útiles para el slug o
// entrada inválida -> domain.ErrInvalidInput; slug ya tomado -> domain.ErrDuplicate.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisteredUser, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.OrganizationName = strings.TrimSpace(in.OrganizationName)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}

	existing, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		uc.log.Error().Err(err).Msg("consulta de email en registro")
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	slug := tenant.Slugify(in.OrganizationName)
	if slug == "" {
		return nil, fmt.Errorf("%w: organizationName no produce un identificador válido", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := uc.now().UTC()
	orgType := in.OrganizationType
	if orgType == "" {
		orgType = entity.OrgTypePharmacy
	}
	role := in.Role
	if role == "" {
		role = entity.RoleTenantAdmin
	}
	t := &entity.Tenant{
		ID:               uuid.New().String(),
		Name:             in.OrganizationName,
		Slug:             slug,
		OrganizationType: orgType,
		Status:           entity.TenantStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		TenantID:     t.ID,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.txRunner.RunRegistration(ctx, func(tenants repository.TenantRepository, users repository.UserRepository) error {
		if err := tenants.Create(ctx, t); err != nil {
			return err
		}
		return users.Create(ctx, user)
	})
	if err != nil {
		// Carrera entre dos registros con el mismo email o slug: el índice único decide.
		if errors.Is(err, domain.ErrEmailAlreadyExists) || errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		uc.log.Error().Err(err).Str("slug", slug).Msg("registro falló al persistir")
		return nil, err
	}

	uc.log.Info().Str("user_id", user.ID).Str("tenant_id", t.ID).Str("slug", slug).Msg("organización registrada")
	return &dto.RegisteredUser{ID: user.ID, Email: user.Email}, nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, domain.ErrForbidden
	}
	token, err := uc.tokens.Sign(jwt.Identity{UserID: user.ID, TenantID: user.TenantID, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("firmar token: %w", err)
	}
	return &dto.LoginResponse{
		Token: token,
		User:  toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
