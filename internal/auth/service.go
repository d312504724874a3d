// Package auth registers users, verifies credentials and keeps a signed-in
// session on this machine as a PASETO token.
package auth

import (
	"context"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/logger"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/profile"
	"github.com/julianstephens/moonlit/internal/validation"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotSignedIn is returned when no valid session exists.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrSessionExpired is returned when the stored session can no longer be used.
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// RegisterInput is the data collected by the registration form.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Birthdate string `json:"birthdate" validate:"required,date,notfuture"`
}

// LoginInput is the data collected by the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type passwordChange struct {
	Password string `json:"new_password" validate:"required,min=8,max=72"`
}

type emailChange struct {
	Email string `json:"email" validate:"required,email"`
}

type birthdateChange struct {
	Birthdate string `json:"birthdate" validate:"required,date,notfuture"`
}

type Service struct {
	store     profile.Store
	tokens    *TokenService
	sessions  Sessions
	validator *validation.Validator
}

func NewService(store profile.Store, tokens *TokenService, sessions Sessions) *Service {
	return &Service{
		store:     store,
		tokens:    tokens,
		sessions:  sessions,
		validator: validation.Default(),
	}
}

// Register creates a profile with the zodiac sign derived from the birthdate
// and signs the new user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.Profile, error) {
	const op = "auth.Register"

	in.Email = validation.NormalizeEmail(in.Email)
	if err := s.validator.Struct(op, in); err != nil {
		return models.Profile{}, err
	}

	sign, err := models.ZodiacSignForDate(in.Birthdate)
	if err != nil {
		return models.Profile{}, errors.E(op, errors.KindInvalidInput, err)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.Profile{}, errors.E(op, errors.KindInvalidInput, err)
	}

	p, err := s.store.CreateUser(ctx, profile.NewUser{
		Email:        in.Email,
		PasswordHash: hash,
		Birthdate:    in.Birthdate,
		ZodiacSign:   sign,
	})
	if err != nil {
		return models.Profile{}, errors.E(op, errors.KindOf(err), err)
	}

	logger.Info("registered user", "uid", p.UID, "sign", p.ZodiacSign)
	if err := s.startSession(op, p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// Login verifies the credentials and stores a new session.
func (s *Service) Login(ctx context.Context, in LoginInput) (models.Profile, error) {
	const op = "auth.Login"

	in.Email = validation.NormalizeEmail(in.Email)
	if err := s.validator.Struct(op, in); err != nil {
		return models.Profile{}, err
	}

	p, hash, err := s.store.Credentials(ctx, in.Email)
	if err != nil {
		if errors.Is(err, profile.ErrUserNotFound) {
			// Hash anyway so unknown emails cost as much as wrong passwords
			VerifyPassword(dummyHash, in.Password)
			return models.Profile{}, errors.E(op, errors.KindAuth, ErrInvalidCredentials)
		}
		return models.Profile{}, errors.E(op, errors.KindOf(err), err)
	}
	if !VerifyPassword(hash, in.Password) {
		logger.Debug("password mismatch", "uid", p.UID)
		return models.Profile{}, errors.E(op, errors.KindAuth, ErrInvalidCredentials)
	}

	if err := s.startSession(op, p); err != nil {
		return models.Profile{}, err
	}
	logger.Info("signed in", "uid", p.UID)
	return p, nil
}

// bcrypt hash of a random string, used to equalize login timing.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z7lp1bG1r1Pq1mPb4sY4yE2W"

func (s *Service) startSession(op string, p models.Profile) error {
	if err := s.sessions.Save(s.tokens.Issue(p)); err != nil {
		return errors.E(op, errors.KindStorage, err)
	}
	return nil
}

// Logout forgets the stored session. Logging out without a session is a no-op.
func (s *Service) Logout() error {
	if err := s.sessions.Delete(); err != nil {
		return errors.E("auth.Logout", errors.KindStorage, err)
	}
	return nil
}

// Current returns the profile of the signed-in user. A session that fails
// verification or names a deleted user is discarded.
func (s *Service) Current(ctx context.Context) (models.Profile, error) {
	const op = "auth.Current"

	token, err := s.sessions.Load()
	if errors.Is(err, ErrNoSession) {
		return models.Profile{}, errors.E(op, errors.KindAuth, ErrNotSignedIn)
	}
	if err != nil {
		return models.Profile{}, errors.E(op, errors.KindStorage, err)
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		logger.Debug("discarding session", "error", err)
		_ = s.sessions.Delete()
		return models.Profile{}, errors.E(op, errors.KindAuth, ErrSessionExpired)
	}

	p, err := s.store.GetProfile(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, profile.ErrUserNotFound) {
			_ = s.sessions.Delete()
			return models.Profile{}, errors.E(op, errors.KindAuth, ErrSessionExpired)
		}
		return models.Profile{}, errors.E(op, errors.KindOf(err), err)
	}
	return p, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, uid, current, next string) error {
	const op = "auth.ChangePassword"

	if err := s.validator.Struct(op, passwordChange{Password: next}); err != nil {
		return err
	}

	p, err := s.store.GetProfile(ctx, uid)
	if err != nil {
		return errors.E(op, errors.KindOf(err), err)
	}
	_, hash, err := s.store.Credentials(ctx, p.Email)
	if err != nil {
		return errors.E(op, errors.KindOf(err), err)
	}
	if !VerifyPassword(hash, current) {
		return errors.E(op, errors.KindAuth, ErrInvalidCredentials)
	}

	newHash, err := HashPassword(next)
	if err != nil {
		return errors.E(op, errors.KindInvalidInput, err)
	}
	if err := s.store.UpdatePasswordHash(ctx, uid, newHash); err != nil {
		return errors.E(op, errors.KindOf(err), err)
	}
	return nil
}

// UpdateBirthdate stores a new birthdate and recomputes the zodiac sign.
func (s *Service) UpdateBirthdate(ctx context.Context, uid, birthdate string) (models.Profile, error) {
	const op = "auth.UpdateBirthdate"

	if err := s.validator.Struct(op, birthdateChange{Birthdate: birthdate}); err != nil {
		return models.Profile{}, err
	}
	sign, err := models.ZodiacSignForDate(birthdate)
	if err != nil {
		return models.Profile{}, errors.E(op, errors.KindInvalidInput, err)
	}

	p, err := s.store.UpdateBirthdate(ctx, uid, birthdate, sign)
	if err != nil {
		return models.Profile{}, errors.E(op, errors.KindOf(err), err)
	}
	return p, nil
}

// UpdateEmail changes the sign-in email and reissues the session.
func (s *Service) UpdateEmail(ctx context.Context, uid, email string) (models.Profile, error) {
	const op = "auth.UpdateEmail"

	email = validation.NormalizeEmail(email)
	if err := s.validator.Struct(op, emailChange{Email: email}); err != nil {
		return models.Profile{}, err
	}

	p, err := s.store.UpdateEmail(ctx, uid, email)
	if err != nil {
		return models.Profile{}, errors.E(op, errors.KindOf(err), err)
	}
	if err := s.startSession(op, p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}
