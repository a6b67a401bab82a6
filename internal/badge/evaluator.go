package badge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/notification"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/SlpAus/smartpanel-backend/internal/platform/database"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Evaluator grants every badge a panelist's score qualifies for.
// It only reads the score, so it can run after the scoring transaction.
type Evaluator struct {
	db     *gorm.DB
	notify notification.Publisher
	log    *logger.Logger
	now    func() time.Time
}

func NewEvaluator(db *gorm.DB, notify notification.Publisher, log *logger.Logger) *Evaluator {
	if notify == nil {
		notify = notification.Discard
	}
	return &Evaluator{db: db, notify: notify, log: log, now: time.Now}
}

type holder struct {
	Score     int
	AccountID uint
}

// Evaluate is idempotent and never revokes. It returns only the badges
// awarded by this call.
func (e *Evaluator) Evaluate(ctx context.Context, panelistID uint) ([]Badge, error) {
	db := e.db.WithContext(ctx)

	var h holder
	err := db.Table("panelists").Select("score", "account_id").Where("id = ?", panelistID).Take(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("panelist %d not found", panelistID)
		}
		return nil, fmt.Errorf("read score of panelist %d: %w", panelistID, err)
	}

	var eligible []Badge
	if err := db.Where("required_score <= ?", h.Score).Order("required_score, id").Find(&eligible).Error; err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	var owned []uint
	if err := db.Model(&PanelistBadge{}).Where("panelist_id = ?", panelistID).Pluck("badge_id", &owned).Error; err != nil {
		return nil, fmt.Errorf("load owned badges: %w", err)
	}
	has := make(map[uint]bool, len(owned))
	for _, id := range owned {
		has[id] = true
	}

	var awarded []Badge
	for _, b := range eligible {
		if has[b.ID] {
			continue
		}
		ok, err := e.grant(db, panelistID, b.ID)
		if err != nil {
			return awarded, err
		}
		if !ok {
			continue
		}
		awarded = append(awarded, b)
		e.notify.Publish(notification.NewEvent(notification.KindBadgeAwarded, h.AccountID, map[string]interface{}{
			"panelistId": panelistID,
			"badgeId":    b.ID,
			"badge":      b.Name,
		}))
	}

	if len(awarded) > 0 {
		e.log.Info("badges awarded", "panelist_id", panelistID, "count", len(awarded))
	}
	return awarded, nil
}

// grant reports false when another evaluator got there first.
func (e *Evaluator) grant(db *gorm.DB, panelistID, badgeID uint) (bool, error) {
	row := PanelistBadge{PanelistID: panelistID, BadgeID: badgeID, AwardedAt: e.now().UTC()}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		if database.IsDuplicateKeyError(res.Error) {
			return false, nil
		}
		return false, fmt.Errorf("award badge %d to panelist %d: %w", badgeID, panelistID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ForPanelist lists earned badges, oldest first.
func (e *Evaluator) ForPanelist(ctx context.Context, panelistID uint) ([]PanelistBadge, error) {
	var rows []PanelistBadge
	err := e.db.WithContext(ctx).Preload("Badge").
		Where("panelist_id = ?", panelistID).
		Order("awarded_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list badges of panelist %d: %w", panelistID, err)
	}
	return rows, nil
}
