package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/badge"
	"github.com/SlpAus/smartpanel-backend/internal/campaign"
	"github.com/SlpAus/smartpanel-backend/internal/form"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/internal/platform/validate"
	"github.com/SlpAus/smartpanel-backend/internal/profile"
	"github.com/SlpAus/smartpanel-backend/internal/scoring"
	"gorm.io/gorm"
)

// LeaderboardCache forgets deleted panelists.
type LeaderboardCache interface {
	Remove(ctx context.Context, panelistID uint) error
}

type CreateAdminInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type Service struct {
	db       *gorm.DB
	accounts *account.Service
	cache    LeaderboardCache
	validate *validate.Validator
	log      *logger.Logger
}

func NewService(db *gorm.DB, cache LeaderboardCache, log *logger.Logger) *Service {
	return &Service{
		db:       db,
		accounts: account.NewService(db),
		cache:    cache,
		validate: validate.New(),
		log:      log,
	}
}

func (s *Service) ListUsers(ctx context.Context) ([]account.Account, error) {
	return s.accounts.ListAccounts(ctx)
}

func (s *Service) CreateAdmin(ctx context.Context, in CreateAdminInput) (*account.Account, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	var created *account.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acct, err := account.CreateIdentity(tx, account.IdentityInput{
			DisplayName: in.Username,
			Email:       in.Email,
			Password:    in.Password,
			Role:        account.RoleAdmin,
		})
		created = acct
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("admin account created", "account_id", created.ID, "username", created.Username)
	return created, nil
}

// DeleteUser removes an account with its profile and everything the
// profile owns, in one transaction.
func (s *Service) DeleteUser(ctx context.Context, callerID, targetID uint) error {
	if callerID == targetID {
		return apperr.Validation("you cannot delete your own account")
	}

	var panelistIDs []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acct account.Account
		if err := tx.First(&acct, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("account %d not found", targetID)
			}
			return fmt.Errorf("load account %d: %w", targetID, err)
		}

		if err := tx.Model(&profile.Panelist{}).Where("account_id = ?", targetID).Pluck("id", &panelistIDs).Error; err != nil {
			return fmt.Errorf("find panelist profile: %w", err)
		}
		for _, id := range panelistIDs {
			if err := deletePanelistTx(tx, id); err != nil {
				return err
			}
		}

		var announcerIDs []uint
		if err := tx.Model(&profile.Announcer{}).Where("account_id = ?", targetID).Pluck("id", &announcerIDs).Error; err != nil {
			return fmt.Errorf("find announcer profile: %w", err)
		}
		for _, id := range announcerIDs {
			if err := deleteAnnouncerTx(tx, id); err != nil {
				return err
			}
		}

		if err := tx.Delete(&acct).Error; err != nil {
			return fmt.Errorf("delete account %d: %w", targetID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range panelistIDs {
		if s.cache == nil {
			break
		}
		if err := s.cache.Remove(ctx, id); err != nil {
			s.log.Warn("leaderboard cache still lists deleted panelist", "panelist_id", id, "error", err)
		}
	}
	s.log.Info("account deleted", "account_id", targetID)
	return nil
}

func deletePanelistTx(tx *gorm.DB, panelistID uint) error {
	if err := form.DeleteResponsesOfPanelistTx(tx, panelistID); err != nil {
		return err
	}
	steps := []struct {
		what  string
		model interface{}
	}{
		{"score history", &scoring.HistoryEntry{}},
		{"badges", &badge.PanelistBadge{}},
		{"applications", &campaign.Application{}},
	}
	for _, step := range steps {
		if err := tx.Where("panelist_id = ?", panelistID).Delete(step.model).Error; err != nil {
			return fmt.Errorf("delete %s of panelist %d: %w", step.what, panelistID, err)
		}
	}
	p := profile.Panelist{ID: panelistID}
	if err := tx.Model(&p).Association("Interests").Clear(); err != nil {
		return fmt.Errorf("clear interests of panelist %d: %w", panelistID, err)
	}
	if err := tx.Delete(&p).Error; err != nil {
		return fmt.Errorf("delete panelist %d: %w", panelistID, err)
	}
	return nil
}

func deleteAnnouncerTx(tx *gorm.DB, announcerID uint) error {
	var campaignIDs []uint
	if err := tx.Model(&campaign.Campaign{}).Where("announcer_id = ?", announcerID).Pluck("id", &campaignIDs).Error; err != nil {
		return fmt.Errorf("list campaigns of announcer %d: %w", announcerID, err)
	}
	var formIDs []uint
	if err := tx.Model(&form.Form{}).Where("announcer_id = ?", announcerID).Pluck("id", &formIDs).Error; err != nil {
		return fmt.Errorf("list forms of announcer %d: %w", announcerID, err)
	}
	if err := form.DeleteFormsTx(tx, formIDs); err != nil {
		return err
	}
	if len(campaignIDs) > 0 {
		if err := tx.Where("campaign_id IN ?", campaignIDs).Delete(&campaign.Application{}).Error; err != nil {
			return fmt.Errorf("delete applications: %w", err)
		}
		if err := tx.Where("id IN ?", campaignIDs).Delete(&campaign.Campaign{}).Error; err != nil {
			return fmt.Errorf("delete campaigns: %w", err)
		}
	}
	if err := tx.Delete(&profile.Announcer{}, announcerID).Error; err != nil {
		return fmt.Errorf("delete announcer %d: %w", announcerID, err)
	}
	return nil
}
