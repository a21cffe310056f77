package user

import (
	"context"
	"net/mail"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
)

var (
	// errors
	ErrNotFound           = errors.Wrap(core.ErrNotFound, "user")
	ErrEmailExists        = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrAccountInactive    = errors.New("Account is inactive")
	ErrTooManyAttempts    = errors.New("too many login attempts, try again later")
	ErrInvalidResetLink   = errors.New("the password reset link is invalid or has expired")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		EmailExists(ctx context.Context, email string) (bool, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on User.Email.
		QueryUsers(ctx context.Context, filter QueryFilter, page core.Page, ordering ...core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		// GetProfile looks up the teacher, student or parent records owned by usr.
		GetProfile(ctx context.Context, usr User) (Profile, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		cache   core.Cache
		tokens  tokenGenerator
		login   core.LoginConfig
	}
)

func NewService(repo Repository, mailSvc core.EmailService, cache core.Cache, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		cache:   cache,
		tokens:  tokenGenerator{secretKey: []byte(conf.SecretKey), timeout: conf.PasswordResetTimeoutDelta},
		login:   conf.Login,
	}
}

// Create checks that the email is free and stores a new active User.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	exists, err := svc.repo.EmailExists(ctx, nu.Email)
	if err != nil {
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}

	now := core.Now()
	usr := User{
		ID:        core.NewID(),
		Email:     nu.Email,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

// AddOrUpdate creates the user with the given email, or updates its role and password. The user is (re)activated.
func (svc *Service) AddOrUpdate(ctx context.Context, email, role, pwd string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if !IsValidRole(role) {
		return User{}, core.NewFieldError("role", "invalid role")
	}

	usr, err := svc.repo.GetUserByEmail(ctx, email)
	isNew := core.IsNotFound(err)
	if err != nil && !isNew {
		return User{}, errors.Wrap(err, "finding user by email")
	}

	now := core.Now()
	if isNew {
		usr = User{ID: core.NewID(), Email: email, CreatedAt: now}
	}
	usr.Role = role
	usr.IsActive = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	if isNew {
		return svc.repo.CreateUser(ctx, usr)
	}
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, page core.Page, ordering ...core.DBOrdering) ([]User, error) {
	filter.Clean()
	return svc.repo.QueryUsers(ctx, filter, page, ordering...)
}

func (svc *Service) SetActive(ctx context.Context, usr User, active bool) (User, error) {
	usr.IsActive = active
	usr.UpdatedAt = core.Now()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = null.TimeFrom(core.Now())
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = core.Now()
	return svc.repo.UpdateUser(ctx, usr)
}

// Profile attaches the ids and names of the teacher, student or parent records owned by usr.
func (svc *Service) Profile(ctx context.Context, usr User) (Profile, error) {
	prof, err := svc.repo.GetProfile(ctx, usr)
	return prof, errors.Wrap(err, "getting profile")
}

func loginAttemptsKey(email string) string {
	return "login:attempts:" + email
}

// Authenticate checks the credentials and records the login.
// Every attempt is counted per email before the password is checked, so concurrent guesses cannot get past the limit.
// Once the limit is reached logins are refused until the lockout expires; a correct password clears the count.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	key := loginAttemptsKey(email)

	if svc.login.MaxAttempts > 0 {
		attempts, err := svc.cache.Incr(ctx, key, svc.login.LockoutDelta)
		if err != nil {
			return User{}, errors.Wrap(err, "counting login attempt")
		}
		if attempts > svc.login.MaxAttempts {
			return User{}, ErrTooManyAttempts
		}
	}

	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}

	if err = svc.cache.Delete(ctx, key); err != nil {
		return User{}, errors.Wrap(err, "clearing login attempts")
	}
	if !usr.IsActive {
		return User{}, ErrAccountInactive
	}
	usr, err = svc.SetLastLogin(ctx, usr)
	return usr, errors.Wrap(err, "setting lastLogin")
}

type passwordResetData struct {
	Email string
	UID   string
	Token string
}

// RequestPasswordReset emails a password reset link to the owner of email, if it is an active account.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *Service) sendPasswordResetMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: passwordResetData{
			Email: usr.Email,
			UID:   EncodeUID(usr),
			Token: svc.tokens.makeToken(usr),
		},
	})
}

// ResetPassword sets a new password when uid and token are a valid password reset pair.
func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) (User, error) {
	invalid := core.NewValidationError(ErrInvalidResetLink)

	id, err := decodeUID(strings.TrimSpace(data.UID))
	if err != nil {
		return User{}, invalid
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, invalid
		}
		return User{}, errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return User{}, invalid
	}
	if err = svc.tokens.verifyToken(usr, data.Token); err != nil {
		return User{}, invalid
	}
	return svc.SetPassword(ctx, usr, data.Password)
}
