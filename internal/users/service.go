// Package users implements the business rules behind the /api/users routes:
// boundary validation, password hashing and credential checks. Persistence is
// delegated to a storage.UserStore.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/users-api/internal/models"
	"github.com/hongminglow/users-api/internal/storage"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes  = 72
	minUsernameLength = 3
	maxUsernameLength = 64
	maxLabelLength    = 64
	maxNameLength     = 128
)

// ErrInvalidCredentials is returned by Login for an unknown username or a
// wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError reports a request that failed boundary checks.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CreateInput carries the fields accepted on user creation.
type CreateInput struct {
	Username string
	Name     string
	Email    string
	Password string
	Profile  string
}

// UpdateInput carries a partial update; nil fields are not touched.
type UpdateInput struct {
	Username *string
	Name     *string
	Email    *string
	Password *string
	Profile  *string
}

// LoginInput carries the credentials presented to Login.
type LoginInput struct {
	Username string
	Password string
}

// Service is the users collaborator consumed by the HTTP router.
type Service struct {
	store      storage.UserStore
	bcryptCost int
}

// Option customises a Service.
type Option func(*Service)

// WithBcryptCost overrides the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// NewService constructs a Service backed by store.
func NewService(store storage.UserStore, opts ...Option) *Service {
	s := &Service{store: store, bcryptCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns the user with the given id or storage.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// Login looks the user up by name and checks the password.
func (s *Service) Login(ctx context.Context, in LoginInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return models.User{}, invalid("username and password are required")
	}
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("find user %q: %w", username, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Create validates the input, hashes the password and stores a new user.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.User, error) {
	user := models.User{
		Username: strings.TrimSpace(in.Username),
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Profile:  strings.TrimSpace(in.Profile),
	}
	if user.Profile == "" {
		user.Profile = models.DefaultProfile
	}
	if err := validateUsername(user.Username); err != nil {
		return models.User{}, err
	}
	if err := validateEmail(user.Email); err != nil {
		return models.User{}, err
	}
	if err := validateName(user.Name); err != nil {
		return models.User{}, err
	}
	if err := validateProfile(user.Profile); err != nil {
		return models.User{}, err
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = hash

	created, err := s.store.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// Update applies the supplied fields to an existing user.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (models.User, error) {
	var patch models.UserPatch
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validateUsername(username); err != nil {
			return models.User{}, err
		}
		patch.Username = &username
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return models.User{}, err
		}
		patch.Name = &name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validateEmail(email); err != nil {
			return models.User{}, err
		}
		patch.Email = &email
	}
	if in.Profile != nil {
		profile := strings.TrimSpace(*in.Profile)
		if profile == "" {
			return models.User{}, invalid("profile must not be empty")
		}
		if err := validateProfile(profile); err != nil {
			return models.User{}, err
		}
		patch.Profile = &profile
	}
	if in.Password != nil {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return models.User{}, err
		}
		patch.PasswordHash = &hash
	}
	if patch.Empty() {
		return models.User{}, invalid("at least one field must be provided")
	}

	updated, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return models.User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	return updated, nil
}

// Delete removes the user with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	if !utf8.ValidString(password) {
		return "", invalid("password must be valid UTF-8")
	}
	if utf8.RuneCountInString(strings.TrimSpace(password)) < minPasswordLength {
		return "", invalid("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return "", invalid("password must be at most %d bytes", maxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxUsernameLength {
		return invalid("username must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return invalid("username must not contain whitespace")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email %q is not a valid address", email)
	}
	return nil
}

func validateName(name string) error {
	if utf8.RuneCountInString(name) > maxNameLength {
		return invalid("name must be at most %d characters", maxNameLength)
	}
	return nil
}

func validateProfile(profile string) error {
	if utf8.RuneCountInString(profile) > maxLabelLength {
		return invalid("profile must be at most %d characters", maxLabelLength)
	}
	return nil
}
