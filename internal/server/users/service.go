package users

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
	"github.com/dmitrijs2005/trustkeeper/internal/logging"
	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
)

const (
	// MinPasswordLength is the shortest password ValidatePassword accepts.
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest password bcrypt can hash.
	MaxPasswordBytes = 72
)

type Service struct {
	repo   Repository
	logger logging.Logger
}

var _ API = (*Service)(nil)

func NewService(repo Repository, logger logging.Logger) *Service {
	return &Service{repo: repo, logger: logger.With("component", "users")}
}

func (s *Service) GetUsers(ctx context.Context) (map[string]*models.UserRecord, error) {
	return s.repo.Users(), nil
}

func (s *Service) GetUserByID(ctx context.Context, uid string) (*models.UserRecord, error) {
	user, ok := s.repo.User(uid)
	if !ok {
		return nil, logging.Invalid(ctx, s.logger, http.StatusNotFound,
			fmt.Errorf("%w: uid %q", common.ErrUserNotFound, uid))
	}
	return user, nil
}

// GetUserByName looks a user up by username, ignoring case.
func (s *Service) GetUserByName(ctx context.Context, username string) (*models.UserRecord, error) {
	for _, user := range s.repo.Users() {
		if strings.EqualFold(user.Credentials.Username, username) {
			return user, nil
		}
	}
	return nil, logging.Invalid(ctx, s.logger, http.StatusNotFound,
		fmt.Errorf("%w: %q", common.ErrUserNotFound, username))
}

// SanitizeUser trims every field and lowercases username and email. The
// password is left untouched.
func (s *Service) SanitizeUser(ctx context.Context, user models.NewUser) (models.NewUser, error) {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Firstname = strings.TrimSpace(user.Firstname)
	user.Lastname = strings.TrimSpace(user.Lastname)

	if user.Username == "" || strings.IndexFunc(user.Username, unicode.IsSpace) >= 0 {
		return models.NewUser{}, logging.Invalid(ctx, s.logger, http.StatusBadRequest,
			fmt.Errorf("%w: username must be a single non-empty word", common.ErrInvalidUser))
	}
	return user, nil
}

// ValidatePassword requires MinPasswordLength characters with at least one
// letter and one digit, and at most MaxPasswordBytes bytes.
func (s *Service) ValidatePassword(ctx context.Context, password string) error {
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	if len([]rune(password)) < MinPasswordLength || !letter || !digit {
		return logging.Invalid(ctx, s.logger, http.StatusBadRequest,
			fmt.Errorf("%w: at least %d characters with a letter and a digit", common.ErrInvalidPassword, MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return logging.Invalid(ctx, s.logger, http.StatusBadRequest,
			fmt.Errorf("%w: at most %d bytes", common.ErrInvalidPassword, MaxPasswordBytes))
	}
	return nil
}

// ValidateEmail accepts a bare address; display names are rejected.
func (s *Service) ValidateEmail(ctx context.Context, email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return logging.Invalid(ctx, s.logger, http.StatusBadRequest,
			fmt.Errorf("%w: %q", common.ErrInvalidEmail, email))
	}
	return nil
}
