package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/SlpAus/smartpanel-backend/internal/platform/database"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// IdentityInput is the first phase of a paired account+profile creation.
type IdentityInput struct {
	DisplayName string
	Email       string
	Password    string
	Role        Role
}

// BaseUsername derives the username stem: lower case, spaces to underscores.
func BaseUsername(displayName string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(displayName)), " ", "_")
}

// CreateIdentity must run inside the caller's transaction so a failing
// profile insert rolls the account back with it.
func CreateIdentity(tx *gorm.DB, in IdentityInput) (*Account, error) {
	if !in.Role.Valid() {
		return nil, apperr.Validation("unknown role %q", in.Role)
	}
	base := BaseUsername(in.DisplayName)
	if base == "" {
		return nil, apperr.Validation("a name is required to derive the username")
	}

	var emailTaken int64
	if err := tx.Model(&Account{}).Where("email = ?", in.Email).Count(&emailTaken).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if emailTaken > 0 {
		return nil, errDuplicateIdentity()
	}

	username, err := uniqueUsername(tx, base)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acct := &Account{
		Username:     username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := tx.Create(acct).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, errDuplicateIdentity()
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return acct, nil
}

func errDuplicateIdentity() error {
	return apperr.Conflict("an account with this email or username already exists")
}

func uniqueUsername(tx *gorm.DB, base string) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		var taken int64
		if err := tx.Model(&Account{}).Where("username = ?", candidate).Count(&taken).Error; err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if taken == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", base, n)
	}
}

// CheckPassword reports whether password matches the stored hash.
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) FindByID(ctx context.Context, id uint) (*Account, error) {
	var acct Account
	if err := s.db.WithContext(ctx).First(&acct, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("account %d not found", id)
		}
		return nil, fmt.Errorf("load account %d: %w", id, err)
	}
	return &acct, nil
}

// ListAccounts returns every account ordered by id.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := s.db.WithContext(ctx).Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix matches names starting with prefix taken literally.
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

// ListInterests filters by a case-insensitive name prefix; an empty prefix lists all.
func (s *Service) ListInterests(ctx context.Context, prefix string) ([]Interest, error) {
	q := s.db.WithContext(ctx).Order("name")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePrefix(strings.ToLower(prefix)))
	}
	var interests []Interest
	if err := q.Find(&interests).Error; err != nil {
		return nil, fmt.Errorf("list interests: %w", err)
	}
	return interests, nil
}
