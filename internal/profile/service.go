package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/SlpAus/smartpanel-backend/internal/platform/database"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/internal/platform/validate"
	"github.com/SlpAus/smartpanel-backend/internal/scoring"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScoreAwarder is the scoring engine as seen from registration.
type ScoreAwarder interface {
	Award(ctx context.Context, panelistID uint, action scoring.Action) (int, error)
}

type Service struct {
	db       *gorm.DB
	scores   ScoreAwarder
	validate *validate.Validator
	log      *logger.Logger
}

func NewService(db *gorm.DB, scores ScoreAwarder, log *logger.Logger) *Service {
	return &Service{db: db, scores: scores, validate: validate.New(), log: log}
}

// RegisterPanelist creates the account and its panelist profile in one
// transaction, then awards the signup points (and the referral bonus).
func (s *Service) RegisterPanelist(ctx context.Context, in PanelistSignup) (*Panelist, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	var panelistID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.ReferrerID != nil {
			var n int64
			if err := tx.Model(&Panelist{}).Where("id = ?", *in.ReferrerID).Count(&n).Error; err != nil {
				return fmt.Errorf("check referrer: %w", err)
			}
			if n == 0 {
				return apperr.Validation("referrer %d does not exist", *in.ReferrerID)
			}
		}

		acct, err := account.CreateIdentity(tx, account.IdentityInput{
			DisplayName: in.FullName,
			Email:       in.Email,
			Password:    in.Password,
			Role:        account.RolePanelist,
		})
		if err != nil {
			return err
		}

		p, err := attachPanelist(tx, acct.ID, in.Email, in.PanelistProfileInput)
		if err != nil {
			return err
		}
		panelistID = p.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.award(ctx, panelistID, scoring.ActionRegister)
	if in.ReferrerID != nil {
		s.award(ctx, *in.ReferrerID, scoring.ActionReferFriend)
	}
	return s.GetPanelist(ctx, panelistID)
}

// RegisterAnnouncer creates the account and its announcer profile in one transaction.
func (s *Service) RegisterAnnouncer(ctx context.Context, in AnnouncerSignup) (*Announcer, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	links, err := jsonColumn(in.SocialMediaLinks)
	if err != nil {
		return nil, err
	}

	var created Announcer
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acct, err := account.CreateIdentity(tx, account.IdentityInput{
			DisplayName: in.CompanyName,
			Email:       in.Email,
			Password:    in.Password,
			Role:        account.RoleAnnouncer,
		})
		if err != nil {
			return err
		}

		created = Announcer{
			AccountID:          acct.ID,
			CompanyName:        in.CompanyName,
			Email:              in.Email,
			PhoneNumber:        in.PhoneNumber,
			Location:           in.Location,
			Industry:           in.Industry,
			CompanySize:        in.CompanySize,
			CompanyDescription: in.CompanyDescription,
			SocialMediaLinks:   links,
			Website:            in.Website,
		}
		if err := tx.Create(&created).Error; err != nil {
			if database.IsDuplicateKeyError(err) {
				return apperr.Conflict("an announcer named %q already exists", in.CompanyName)
			}
			return fmt.Errorf("create announcer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CompletePanelistProfile attaches a profile to an existing bare panelist
// account the first time it runs, awarding complete_profile once. Later
// calls only update the editable fields.
func (s *Service) CompletePanelistProfile(ctx context.Context, accountID uint, in PanelistProfileInput) (*Panelist, bool, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, false, err
	}

	var (
		panelistID uint
		created    bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acct account.Account
		if err := tx.First(&acct, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("account %d not found", accountID)
			}
			return fmt.Errorf("load account: %w", err)
		}
		if acct.Role != account.RolePanelist {
			return apperr.Validation("account %d is not a panelist", accountID)
		}

		var existing Panelist
		err := tx.Where("account_id = ?", accountID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p, err := attachPanelist(tx, accountID, acct.Email, in)
			if err != nil {
				return err
			}
			panelistID, created = p.ID, true
			return nil
		case err != nil:
			return fmt.Errorf("load panelist: %w", err)
		}

		panelistID = existing.ID
		return updatePanelist(tx, &existing, in)
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.award(ctx, panelistID, scoring.ActionCompleteProfile)
	}
	p, err := s.GetPanelist(ctx, panelistID)
	return p, created, err
}

func attachPanelist(tx *gorm.DB, accountID uint, email string, in PanelistProfileInput) (*Panelist, error) {
	p := Panelist{AccountID: accountID, Email: email}
	if err := applyProfile(tx, &p, in); err != nil {
		return nil, err
	}
	if err := tx.Create(&p).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("a panelist named %q already exists", in.FullName)
		}
		return nil, fmt.Errorf("create panelist: %w", err)
	}
	return &p, nil
}

func updatePanelist(tx *gorm.DB, p *Panelist, in PanelistProfileInput) error {
	if err := applyProfile(tx, p, in); err != nil {
		return err
	}
	err := tx.Model(p).Select(
		"full_name", "phone_number", "gender", "birthday", "location",
		"preferred_contact_method", "availability", "experience_level", "social_media_profiles",
	).Updates(p).Error
	if err != nil {
		if database.IsDuplicateKeyError(err) {
			return apperr.Conflict("a panelist named %q already exists", in.FullName)
		}
		return fmt.Errorf("update panelist: %w", err)
	}
	if err := tx.Model(p).Association("Interests").Replace(p.Interests); err != nil {
		return fmt.Errorf("replace interests: %w", err)
	}
	return nil
}

func applyProfile(tx *gorm.DB, p *Panelist, in PanelistProfileInput) error {
	birthday, err := time.Parse("2006-01-02", in.Birthday)
	if err != nil {
		return apperr.Validation("birthday must be YYYY-MM-DD")
	}
	social, err := jsonColumn(in.SocialMediaProfiles)
	if err != nil {
		return err
	}
	interests, err := loadInterests(tx, in.InterestIDs)
	if err != nil {
		return err
	}

	p.FullName = in.FullName
	p.PhoneNumber = in.PhoneNumber
	p.Gender = in.Gender
	p.Birthday = datatypes.Date(birthday)
	p.Location = in.Location
	p.PreferredContactMethod = in.PreferredContactMethod
	p.Availability = in.Availability
	p.ExperienceLevel = in.ExperienceLevel
	p.SocialMediaProfiles = social
	p.Interests = interests
	return nil
}

func loadInterests(tx *gorm.DB, ids []uint) ([]account.Interest, error) {
	if len(ids) == 0 {
		return []account.Interest{}, nil
	}
	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	var interests []account.Interest
	if err := tx.Where("id IN ?", ids).Order("id").Find(&interests).Error; err != nil {
		return nil, fmt.Errorf("load interests: %w", err)
	}
	if len(interests) != len(unique) {
		return nil, apperr.Validation("unknown interest id in %v", ids)
	}
	return interests, nil
}

func jsonColumn(m map[string]string) (datatypes.JSON, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// award never fails the caller: the registration has already committed.
func (s *Service) award(ctx context.Context, panelistID uint, action scoring.Action) {
	if s.scores == nil {
		return
	}
	if _, err := s.scores.Award(ctx, panelistID, action); err != nil {
		s.log.Error("award after registration failed", "panelist_id", panelistID, "action", action, "error", err)
	}
}

func (s *Service) GetPanelist(ctx context.Context, id uint) (*Panelist, error) {
	var p Panelist
	if err := s.db.WithContext(ctx).Preload("Interests").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("panelist %d not found", id)
		}
		return nil, fmt.Errorf("load panelist %d: %w", id, err)
	}
	return &p, nil
}

func (s *Service) PanelistByAccount(ctx context.Context, accountID uint) (*Panelist, error) {
	var p Panelist
	err := s.db.WithContext(ctx).Preload("Interests").Where("account_id = ?", accountID).Take(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no panelist profile for account %d", accountID)
		}
		return nil, fmt.Errorf("load panelist of account %d: %w", accountID, err)
	}
	return &p, nil
}

// PanelistIDForAccount resolves the calling account to its panelist id.
func (s *Service) PanelistIDForAccount(ctx context.Context, accountID uint) (uint, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&Panelist{}).Where("account_id = ?", accountID).Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("resolve panelist of account %d: %w", accountID, err)
	}
	if len(ids) == 0 {
		return 0, apperr.NotFound("no panelist profile for account %d", accountID)
	}
	return ids[0], nil
}

// AnnouncerIDForAccount resolves the calling account to its announcer id.
func (s *Service) AnnouncerIDForAccount(ctx context.Context, accountID uint) (uint, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&Announcer{}).Where("account_id = ?", accountID).Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("resolve announcer of account %d: %w", accountID, err)
	}
	if len(ids) == 0 {
		return 0, apperr.NotFound("no announcer profile for account %d", accountID)
	}
	return ids[0], nil
}

// AccountForPanelist returns the owning account id, used to address notifications.
func (s *Service) AccountForPanelist(ctx context.Context, panelistID uint) (uint, error) {
	p, err := s.GetPanelist(ctx, panelistID)
	if err != nil {
		return 0, err
	}
	return p.AccountID, nil
}
