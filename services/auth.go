package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LovationAdmin/wedding-api/models"
	"github.com/LovationAdmin/wedding-api/store"
	"github.com/LovationAdmin/wedding-api/utils"
)

const totpIssuer = "Wedding Admin"

type AdminStore interface {
	CreateAdmin(ctx context.Context, a *models.AdminUser) error
	GetAdmin(ctx context.Context, id string) (*models.AdminUser, error)
	GetAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	UpdateAdminLogin(ctx context.Context, id string, at time.Time) error
	SetAdminTOTP(ctx context.Context, id, secret string, enabled bool) error
	SetAdminPassword(ctx context.Context, id, passwordHash string) error
	WithTx(ctx context.Context, fn func(tx store.Store) error) error
}

type AuthService struct {
	store     AdminStore
	audit     *AuditService
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(s AdminStore, audit *AuditService, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		store:     s,
		audit:     audit,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) loginFailed(ctx context.Context, admin *models.AdminUser, reason string, meta models.RequestMeta) {
	utils.LogAuthAction("login", admin.Email, false)
	metadata := map[string]any{"reason": reason}
	if meta.IP != "" {
		metadata["ip"] = meta.IP
	}
	// Best effort: a failed login already answers 401
	_ = s.audit.Log(ctx, &models.AuditLog{
		ActorType:    models.ActorAdmin,
		ActorAdminID: &admin.ID,
		Action:       models.ActionAdminLoginFailed,
		EntityType:   "AdminUser",
		EntityID:     admin.ID,
		Metadata:     metadata,
	})
}

// Login checks credentials and, when enabled, the TOTP code. Unknown e-mails
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, meta models.RequestMeta) (*models.AuthResponse, error) {
	admin, err := s.store.GetAdminByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		utils.LogAuthAction("login", req.Email, false)
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	if !utils.CheckPassword(req.Password, admin.PasswordHash) {
		s.loginFailed(ctx, admin, "password", meta)
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	if admin.TOTPEnabled {
		if req.TOTPCode == "" {
			return nil, ErrTOTPRequired
		}
		if !utils.VerifyTOTP(admin.TOTPSecret, req.TOTPCode) {
			s.loginFailed(ctx, admin, "totp", meta)
			return nil, fmt.Errorf("%w: invalid 2FA code", ErrUnauthorized)
		}
	}

	accessToken, err := utils.GenerateAccessToken(s.jwtSecret, admin.ID, admin.Email, admin.Role, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	entry := &models.AuditLog{
		ActorType:    models.ActorAdmin,
		ActorAdminID: &admin.ID,
		Action:       models.ActionAdminLogin,
		EntityType:   "AdminUser",
		EntityID:     admin.ID,
	}
	if meta.IP != "" {
		entry.Metadata = map[string]any{"ip": meta.IP}
	}
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.UpdateAdminLogin(ctx, admin.ID, s.now()); err != nil {
			return err
		}
		return s.audit.LogTx(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	s.audit.Notify(*entry)

	utils.LogAuthAction("login", admin.Email, true)
	return &models.AuthResponse{
		AccessToken: accessToken,
		ExpiresIn:   s.tokenTTL.String(),
	}, nil
}

// ParseToken validates a bearer token and returns its claims
func (s *AuthService) ParseToken(token string) (*utils.AdminClaims, error) {
	claims, err := utils.ParseAccessToken(s.jwtSecret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims, nil
}

func (s *AuthService) Me(ctx context.Context, adminID string) (*models.AdminUser, error) {
	admin, err := s.store.GetAdmin(ctx, adminID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: admin no longer exists", ErrUnauthorized)
	}
	return admin, err
}

// ============================================================================
// 2FA
// ============================================================================

// SetupTOTP stores a fresh secret. It only becomes active after VerifyTOTP.
func (s *AuthService) SetupTOTP(ctx context.Context, adminID string) (*models.TOTPSetupResponse, error) {
	admin, err := s.Me(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.TOTPEnabled {
		return nil, fmt.Errorf("%w: 2FA is already enabled", ErrBadRequest)
	}

	secret, url, err := utils.GenerateTOTPSecret(totpIssuer, admin.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP: %w", err)
	}
	if err := s.store.SetAdminTOTP(ctx, admin.ID, secret, false); err != nil {
		return nil, err
	}

	return &models.TOTPSetupResponse{Secret: secret, URL: url}, nil
}

func (s *AuthService) VerifyTOTP(ctx context.Context, adminID, code string) error {
	admin, err := s.Me(ctx, adminID)
	if err != nil {
		return err
	}
	if admin.TOTPSecret == "" {
		return fmt.Errorf("%w: 2FA not set up", ErrBadRequest)
	}
	if !utils.VerifyTOTP(admin.TOTPSecret, code) {
		return fmt.Errorf("%w: invalid TOTP code", ErrUnauthorized)
	}

	return s.adminUpdate(ctx, admin, models.ActionAdminTOTPEnabled, func(tx store.Store) error {
		return tx.SetAdminTOTP(ctx, admin.ID, admin.TOTPSecret, true)
	})
}

// DisableTOTP needs both the password and a current code
func (s *AuthService) DisableTOTP(ctx context.Context, adminID string, req models.DisableTOTPRequest) error {
	admin, err := s.Me(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.TOTPEnabled {
		return fmt.Errorf("%w: 2FA is not enabled", ErrBadRequest)
	}
	if !utils.CheckPassword(req.Password, admin.PasswordHash) {
		return fmt.Errorf("%w: invalid password", ErrUnauthorized)
	}
	if !utils.VerifyTOTP(admin.TOTPSecret, req.Code) {
		return fmt.Errorf("%w: invalid 2FA code", ErrUnauthorized)
	}

	return s.adminUpdate(ctx, admin, models.ActionAdminTOTPDisabled, func(tx store.Store) error {
		return tx.SetAdminTOTP(ctx, admin.ID, "", false)
	})
}

// ============================================================================
// PASSWORD
// ============================================================================

func (s *AuthService) ChangePassword(ctx context.Context, adminID string, req models.ChangePasswordRequest) error {
	admin, err := s.Me(ctx, adminID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(req.CurrentPassword, admin.PasswordHash) {
		return fmt.Errorf("%w: current password is incorrect", ErrUnauthorized)
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.adminUpdate(ctx, admin, models.ActionAdminPasswordChanged, func(tx store.Store) error {
		return tx.SetAdminPassword(ctx, admin.ID, hash)
	})
}

// adminUpdate applies fn and the matching audit entry atomically
func (s *AuthService) adminUpdate(ctx context.Context, admin *models.AdminUser, action string, fn func(tx store.Store) error) error {
	entry := &models.AuditLog{
		ActorType:    models.ActorAdmin,
		ActorAdminID: &admin.ID,
		Action:       action,
		EntityType:   "AdminUser",
		EntityID:     admin.ID,
	}
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		if err := fn(tx); err != nil {
			return err
		}
		return s.audit.LogTx(ctx, tx, entry)
	})
	if err != nil {
		return err
	}
	s.audit.Notify(*entry)

	utils.LogAdminAction(strings.ToLower(action), admin.ID, admin.ID)
	return nil
}

// ============================================================================
// BOOTSTRAP
// ============================================================================

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, nil
	}

	_, err := s.store.GetAdminByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}
	if name == "" {
		name = "Admin"
	}

	admin := &models.AdminUser{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		Role:         models.RoleSuperAdmin,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	entry := &models.AuditLog{
		ActorType:  models.ActorSystem,
		Action:     models.ActionAdminCreated,
		EntityType: "AdminUser",
		EntityID:   admin.ID,
		Metadata:   map[string]any{"role": admin.Role},
	}
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateAdmin(ctx, admin); err != nil {
			return err
		}
		return s.audit.LogTx(ctx, tx, entry)
	})
	if err != nil {
		return false, err
	}
	s.audit.Notify(*entry)

	utils.LogAuthAction("bootstrap admin created", email, true)
	return true, nil
}
