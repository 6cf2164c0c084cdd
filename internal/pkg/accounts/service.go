package accounts

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/ahmedsamir-dev/netcafes/app/models"
	"github.com/ahmedsamir-dev/netcafes/app/repository"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/mail"
)

const minPasswordLength = 6

// ExternalIdentity is the provider-agnostic tuple delivered by the OAuth
// handshake layer.
type ExternalIdentity struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
	AccessToken    string
	RefreshToken   string
	ExpiresAt      *time.Time
}

// Service orchestrates the account lifecycle: registration, email
// confirmation, login with lockout tracking, password change/reset and
// external identity linking.
type Service struct {
	users     repository.UserRepository
	providers repository.ProviderAccountRepository
	issuer    *TokenIssuer
	mailer    mail.Mailer
	policy    LockoutPolicy
	cfg       Config

	// dummyHash is compared against when no account matches a login, so a
	// miss costs the same as a real password check and response timing does
	// not reveal whether the account exists. checkHash is swappable so tests
	// can observe the comparison.
	dummyHash string
	checkHash func(password, hash string) bool
}

// NewService creates an account service from injected collaborators.
func NewService(repos *repository.Repositories, mailer mail.Mailer, cfg Config) *Service {
	dummy, err := models.GenerateTokenValue()
	if err != nil {
		dummy = "netcafes-dummy-credential"
	}
	dummyHash, err := models.HashPassword(dummy)
	if err != nil {
		log.Printf("accounts: could not precompute dummy hash: %v", err)
	}

	return &Service{
		users:     repos.User,
		providers: repos.Provider,
		issuer:    NewTokenIssuer(repos.Token),
		mailer:    mailer,
		policy: LockoutPolicy{
			MaxFailedAttempts: cfg.MaxFailedAttempts,
			LockoutDuration:   cfg.LockoutDuration,
		},
		cfg:       cfg,
		dummyHash: dummyHash,
		checkHash: models.CheckPasswordHash,
	}
}

// NewServiceFromDB creates an account service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, mailer mail.Mailer, cfg Config) *Service {
	return NewService(repository.NewRepositories(db), mailer, cfg)
}

// mapDuplicateKey turns a MySQL duplicate-key violation into the matching
// typed error. The pre-insert uniqueness probes miss soft-deleted rows, which
// the unique indexes still cover, so the constraint can fire even after the
// probes passed.
func mapDuplicateKey(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		return err
	}
	if strings.Contains(me.Message, "email") {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

// Register creates an unconfirmed account and emails a confirmation link.
// The very first account in the store receives the admin role. A failed
// confirmation mail is logged as a warning but never fails the registration.
func (s *Service) Register(username, email, phone, password string) (*models.User, error) {
	user, err := models.NewUser(username, email, phone, password)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByName(user.Name); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(user.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	count, err := s.users.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		user.Role = models.ROLE_ADMIN
	}

	if err := s.users.Create(user); err != nil {
		return nil, mapDuplicateKey(err)
	}

	s.sendConfirmationMail(user)

	return user, nil
}

// ConfirmEmail redeems an email-confirmation token for the given account.
func (s *Service) ConfirmEmail(accountID uint, tokenValue string) error {
	token, err := s.issuer.Validate(tokenValue, models.TOKEN_PURPOSE_EMAIL_CONFIRMATION)
	if err != nil {
		return s.collapseTokenError(err)
	}
	if token.UserID != accountID {
		return ErrInvalidToken
	}

	user, err := s.users.GetByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	if _, err := s.issuer.Consume(tokenValue, models.TOKEN_PURPOSE_EMAIL_CONFIRMATION); err != nil {
		return s.collapseTokenError(err)
	}

	user.ConfirmEmail()
	return s.users.Update(user)
}

// Login verifies credentials for an exact username or email match and
// returns a closed-set outcome. All credential failures share one outcome;
// a dummy hash comparison keeps the miss path as slow as the hit path.
func (s *Service) Login(usernameOrEmail, password string) (LoginResult, error) {
	now := time.Now()

	user, err := s.users.GetByNameOrEmail(usernameOrEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.checkHash(password, s.dummyHash)
			return LoginResult{Status: LoginInvalidCredentials}, nil
		}
		return LoginResult{}, err
	}

	if s.policy.IsLockedOut(user, now) {
		return LoginResult{
			Status:           LoginLockedOut,
			LockoutRemaining: user.LockoutRemaining(now),
		}, nil
	}

	if !user.IsEmailConfirmed() {
		return LoginResult{Status: LoginNotAllowed}, nil
	}

	if !user.CheckPassword(password) {
		failedCount, err := s.users.RegisterFailedLogin(user.ID, s.policy.MaxFailedAttempts, s.policy.LockoutEnd(now))
		if err != nil {
			return LoginResult{}, err
		}
		if s.policy.ShouldLock(failedCount) {
			return LoginResult{
				Status:           LoginLockedOut,
				LockoutRemaining: s.policy.LockoutDuration,
			}, nil
		}
		return LoginResult{Status: LoginInvalidCredentials}, nil
	}

	if err := s.users.MarkLoginSuccess(user.ID, now); err != nil {
		return LoginResult{}, err
	}
	user.FailedLoginCount = 0
	user.LastLoginAt = &now

	return LoginResult{Status: LoginSuccess, User: user}, nil
}

// ChangePassword replaces the password after verifying the old one.
func (s *Service) ChangePassword(accountID uint, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if len(newPassword) < minPasswordLength {
		return models.ErrPasswordTooShort
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.users.Update(user)
}

// RequestPasswordReset issues a reset token for a confirmed account matching
// the email. It deliberately returns nothing: callers cannot distinguish
// "mail sent" from "no such account".
func (s *Service) RequestPasswordReset(email string) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("accounts: password reset lookup failed: %v", err)
		}
		return
	}
	if !user.IsEmailConfirmed() {
		return
	}

	raw, err := s.issuer.Issue(user.ID, models.TOKEN_PURPOSE_PASSWORD_RESET, s.cfg.ResetTokenTTL)
	if err != nil {
		log.Printf("accounts: could not issue password reset token for user %d: %v", user.ID, err)
		return
	}

	link := fmt.Sprintf("%s/reset-password?user_id=%d&token=%s", s.cfg.BaseURL, user.ID, raw)
	body := fmt.Sprintf(`
		<h2>Password reset</h2>
		<p>Hello %s,</p>
		<p>A password reset was requested for your account. The link below is valid for %d hours:</p>
		<p><a href="%s">Reset your password</a></p>
		<p>If you did not request this, you can ignore this message.</p>`,
		user.Name, int(s.cfg.ResetTokenTTL.Hours()), link)

	if err := s.mailer.Send(user.Email, "Reset your password", body); err != nil {
		log.Printf("warning: could not send password reset mail to user %d: %v", user.ID, err)
	}
}

// ResetPassword redeems a reset token and replaces the password. The old
// password is not required; this is the recovery path.
func (s *Service) ResetPassword(accountID uint, tokenValue, newPassword string) error {
	token, err := s.issuer.Validate(tokenValue, models.TOKEN_PURPOSE_PASSWORD_RESET)
	if err != nil {
		return s.collapseTokenError(err)
	}
	if token.UserID != accountID {
		return ErrInvalidToken
	}
	if len(newPassword) < minPasswordLength {
		return models.ErrPasswordTooShort
	}

	user, err := s.users.GetByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	if _, err := s.issuer.Consume(tokenValue, models.TOKEN_PURPOSE_PASSWORD_RESET); err != nil {
		return s.collapseTokenError(err)
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.users.Update(user)
}

// LinkExternalLogin resolves an external identity to a local account,
// creating and linking one when needed. The provider vouches for the email,
// so accounts created here start confirmed.
func (s *Service) LinkExternalLogin(ext ExternalIdentity) (*models.User, error) {
	now := time.Now()

	pa, err := s.providers.Get(ext.Provider, ext.ProviderUserID)
	if err == nil {
		user, err := s.users.GetByID(pa.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}
		if user.IsLockedOut(now) {
			return nil, ErrLockedOut
		}

		pa.AccessToken = ext.AccessToken
		pa.RefreshToken = ext.RefreshToken
		pa.ExpiresAt = ext.ExpiresAt
		if err := s.providers.Update(pa); err != nil {
			return nil, err
		}
		if err := s.users.MarkLoginSuccess(user.ID, now); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if ext.Email == "" {
		return nil, ErrEmailRequired
	}

	user, err := s.users.GetByEmail(ext.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.createExternalUser(ext)
	}
	if err != nil {
		return nil, err
	}
	if user.IsLockedOut(now) {
		return nil, ErrLockedOut
	}

	if err := s.providers.Create(&models.ProviderAccount{
		UserID:         user.ID,
		Provider:       ext.Provider,
		ProviderUserID: ext.ProviderUserID,
		AccessToken:    ext.AccessToken,
		RefreshToken:   ext.RefreshToken,
		ExpiresAt:      ext.ExpiresAt,
	}); err != nil {
		return nil, err
	}

	if err := s.users.MarkLoginSuccess(user.ID, now); err != nil {
		return nil, err
	}
	return user, nil
}

// createExternalUser creates an account for a provider-vouched identity. A
// random placeholder password keeps the not-null hash invariant while making
// password login impossible until the user sets one via reset.
func (s *Service) createExternalUser(ext ExternalIdentity) (*models.User, error) {
	placeholder, err := models.GenerateTokenValue()
	if err != nil {
		return nil, err
	}

	name := ext.Name
	if name == "" {
		name = ext.Email
	}

	user, err := models.NewUser(name, ext.Email, "", placeholder)
	if err != nil {
		return nil, err
	}
	user.ConfirmEmail()

	count, err := s.users.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		user.Role = models.ROLE_ADMIN
	}

	if err := s.users.Create(user); err != nil {
		return nil, mapDuplicateKey(err)
	}
	return user, nil
}

// LockAccount applies an administrative lock. A nil until locks indefinitely.
func (s *Service) LockAccount(accountID uint, until *time.Time) error {
	if _, err := s.users.GetByID(accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	end := AdminLockEnd(until)
	return s.users.SetLockout(accountID, &end)
}

// UnlockAccount clears the lockout and resets the failed-login counter.
func (s *Service) UnlockAccount(accountID uint) error {
	if _, err := s.users.GetByID(accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	return s.users.SetLockout(accountID, nil)
}

// ResendActivation issues a fresh confirmation token and mails it.
func (s *Service) ResendActivation(accountID uint) error {
	user, err := s.users.GetByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if user.IsEmailConfirmed() {
		return nil
	}
	s.sendConfirmationMail(user)
	return nil
}

// AdminSetPassword replaces a password without the recovery token dance.
// Reserved for the admin back office.
func (s *Service) AdminSetPassword(accountID uint, newPassword string) error {
	user, err := s.users.GetByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if len(newPassword) < minPasswordLength {
		return models.ErrPasswordTooShort
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.users.Update(user)
}

// CreateUser is the admin-side account creation: role chosen explicitly,
// email optionally pre-confirmed, no confirmation mail.
func (s *Service) CreateUser(username, email, phone, password, role string, emailConfirmed bool) (*models.User, error) {
	if !models.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	user, err := models.NewUser(username, email, phone, password)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if emailConfirmed {
		user.ConfirmEmail()
	}

	if _, err := s.users.GetByName(user.Name); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(user.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.users.Create(user); err != nil {
		return nil, mapDuplicateKey(err)
	}
	return user, nil
}

func (s *Service) sendConfirmationMail(user *models.User) {
	raw, err := s.issuer.Issue(user.ID, models.TOKEN_PURPOSE_EMAIL_CONFIRMATION, s.cfg.ConfirmTokenTTL)
	if err != nil {
		log.Printf("accounts: could not issue confirmation token for user %d: %v", user.ID, err)
		return
	}

	link := fmt.Sprintf("%s/confirm-email?user_id=%d&token=%s", s.cfg.BaseURL, user.ID, raw)
	body := fmt.Sprintf(`
		<h2>Welcome %s</h2>
		<p>Thanks for registering.</p>
		<p>Please confirm your email address by clicking the link below:</p>
		<p><a href="%s">Confirm email</a></p>
		<p>If you did not register, you can ignore this message.</p>`,
		user.Name, link)

	if err := s.mailer.Send(user.Email, "Confirm your email", body); err != nil {
		log.Printf("warning: could not send confirmation mail to user %d: %v", user.ID, err)
	}
}

func (s *Service) collapseTokenError(err error) error {
	switch {
	case errors.Is(err, errTokenNotFound),
		errors.Is(err, errTokenExpired),
		errors.Is(err, errTokenWrongPurpose),
		errors.Is(err, errTokenConsumed):
		return ErrInvalidToken
	default:
		return err
	}
}
