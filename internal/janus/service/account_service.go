package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/BrandonDHaskell/Janus/server/internal/auth"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
)

type AccountConfig struct {
	ResetTTL      time.Duration
	ResetLinkBase string // reset links are <base>/<uid>/<token>
	BcryptCost    int    // 0 means bcrypt.DefaultCost
}

type AccountService struct {
	users    store.UserStore
	resets   store.ResetTokenStore
	tokens   *auth.Tokens
	notifier Notifier
	cfg      AccountConfig
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAccountService(
	us store.UserStore,
	rs store.ResetTokenStore,
	tokens *auth.Tokens,
	notifier Notifier,
	cfg AccountConfig,
	logger zerolog.Logger,
) *AccountService {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	cfg.ResetLinkBase = strings.TrimRight(cfg.ResetLinkBase, "/")
	return &AccountService{
		users:    us,
		resets:   rs,
		tokens:   tokens,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With().Str("component", "accounts").Logger(),
		now:      time.Now,
	}
}

// HashPassword hashes with the given bcrypt cost (0 for the default).
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", invalid("password", "Ensure this field has no more than "+strconv.Itoa(maxPassword)+" bytes.")
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *AccountService) Register(ctx context.Context, req types.RegisterRequest) (types.Profile, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Mobile = strings.TrimSpace(req.Mobile)

	var v validator
	v.required("name", req.Name)
	v.maxLen("name", req.Name, maxUserName)
	v.email("email", req.Email, maxUserEmail)
	v.mobile("mobile", req.Mobile)
	v.passwords(req.Password, req.Password2)
	if v.err != nil {
		return types.Profile{}, v.err
	}

	hash, err := HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return types.Profile{}, err
	}
	u, err := s.users.CreateUser(ctx, store.User{
		Name:         req.Name,
		Email:        normalizeEmail(req.Email),
		Mobile:       req.Mobile,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return types.Profile{}, fromStore("user", err)
	}
	s.logger.Info().Int64("user_id", u.ID).Msg("user registered")
	return toProfile(u), nil
}

// normalizeEmail lower-cases the domain part, leaving the local part as
// entered.
func normalizeEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	return local + "@" + strings.ToLower(domain)
}

func (s *AccountService) Login(ctx context.Context, req types.LoginRequest) (types.TokenPair, error) {
	var v validator
	v.email("email", strings.TrimSpace(req.Email), maxUserEmail)
	v.required("password", req.Password)
	if v.err != nil {
		return types.TokenPair{}, v.err
	}

	u, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		return types.TokenPair{}, unauthorized("Invalid email or password.")
	}
	if err != nil {
		return types.TokenPair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return types.TokenPair{}, unauthorized("Invalid email or password.")
	}
	if !u.IsActive {
		return types.TokenPair{}, &FieldError{Kind: ErrForbidden, Message: "User account is disabled."}
	}
	return s.issue(u.ID)
}

func (s *AccountService) Refresh(ctx context.Context, req types.RefreshRequest) (types.TokenPair, error) {
	if strings.TrimSpace(req.Refresh) == "" {
		return types.TokenPair{}, invalid("refresh", "This field is required.")
	}
	claims, err := s.tokens.Parse(req.Refresh, auth.KindRefresh)
	if err != nil {
		return types.TokenPair{}, &FieldError{Kind: ErrUnauthorized, Message: "Token is invalid or expired.", Err: err}
	}
	if _, err := s.activeUser(ctx, claims.UserID); err != nil {
		return types.TokenPair{}, err
	}
	return s.issue(claims.UserID)
}

func (s *AccountService) issue(userID int64) (types.TokenPair, error) {
	p, err := s.tokens.Issue(userID)
	if err != nil {
		return types.TokenPair{}, err
	}
	return types.TokenPair{Access: p.Access, Refresh: p.Refresh}, nil
}

// Authenticate resolves a bearer access token to an active user.
func (s *AccountService) Authenticate(ctx context.Context, accessToken string) (store.User, error) {
	claims, err := s.tokens.Parse(accessToken, auth.KindAccess)
	if err != nil {
		return store.User{}, &FieldError{Kind: ErrUnauthorized, Message: "Given token not valid for any token type.", Err: err}
	}
	return s.activeUser(ctx, claims.UserID)
}

func (s *AccountService) activeUser(ctx context.Context, id int64) (store.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, unauthorized("User not found.")
	}
	if err != nil {
		return store.User{}, err
	}
	if !u.IsActive {
		return store.User{}, &FieldError{Kind: ErrForbidden, Message: "User account is disabled."}
	}
	return u, nil
}

func (s *AccountService) Profile(ctx context.Context, userID int64) (types.Profile, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return types.Profile{}, fromStore("user", err)
	}
	return toProfile(u), nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID int64, req types.PasswordRequest) error {
	var v validator
	v.passwords(req.Password, req.Password2)
	if v.err != nil {
		return v.err
	}
	return s.setPassword(ctx, userID, req.Password)
}

func (s *AccountService) setPassword(ctx context.Context, userID int64, password string) error {
	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordHash(ctx, userID, hash, s.now()); err != nil {
		return fromStore("user", err)
	}
	s.logger.Info().Int64("user_id", userID).Msg("password changed")
	return nil
}

// EncodeUID is the user-id segment of a reset link.
func EncodeUID(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

func decodeUID(uid string) (int64, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(uid, "="))
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(b), 10, 64)
}

// SendPasswordReset stores a single-use token and hands the reset link to
// the notifier.
func (s *AccountService) SendPasswordReset(ctx context.Context, req types.ResetEmailRequest) error {
	email := strings.TrimSpace(req.Email)
	var v validator
	v.email("email", email, maxUserEmail)
	if v.err != nil {
		return v.err
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return invalid("email", "This email is not registered.")
	}
	if err != nil {
		return err
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.resets.SaveResetToken(ctx, token, u.ID, s.cfg.ResetTTL); err != nil {
		return err
	}
	link := s.cfg.ResetLinkBase + "/" + EncodeUID(u.ID) + "/" + token
	if err := s.notifier.SendPasswordReset(ctx, u.Email, link); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", u.ID).Msg("password reset requested")
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, uid, token string, req types.PasswordRequest) error {
	var v validator
	v.passwords(req.Password, req.Password2)
	if v.err != nil {
		return v.err
	}

	id, err := decodeUID(uid)
	if err != nil {
		return invalid("uid", "Invalid UID encoding.")
	}
	owner, err := s.resets.ConsumeResetToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) || (err == nil && owner != id) {
		return invalid("token", "Invalid or expired token.")
	}
	if err != nil {
		return err
	}
	return s.setPassword(ctx, id, req.Password)
}

// DeleteUserByEmail removes a user; their visitors keep existing with
// registered_by cleared.
func (s *AccountService) DeleteUserByEmail(ctx context.Context, email string) error {
	u, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return fromStore("user", err)
	}
	if err := s.users.DeleteUser(ctx, u.ID); err != nil {
		return fromStore("user", err)
	}
	s.logger.Info().Int64("user_id", u.ID).Msg("user deleted")
	return nil
}
