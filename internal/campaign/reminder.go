package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/notification"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/internal/platform/metadata"
	"github.com/SlpAus/smartpanel-backend/pkg/lifecycle"
	"gorm.io/gorm"
)

const (
	EventStart = "Campaign Start"
	EventEnd   = "Campaign End"
)

// Reminder tells an announcer that one of their campaigns starts or ends tomorrow.
type Reminder struct {
	CampaignID         uint
	CampaignName       string
	AnnouncerAccountID uint
	Event              string
	Date               time.Time
}

type campaignWithOwner struct {
	Campaign
	AnnouncerAccountID uint
}

// DueReminders lists start and end events falling on the day after today.
func DueReminders(ctx context.Context, db *gorm.DB, today time.Time) ([]Reminder, error) {
	tomorrow := dayKey(today.AddDate(0, 0, 1))

	var rows []campaignWithOwner
	err := db.WithContext(ctx).
		Table("campaigns").
		Select("campaigns.*, announcers.account_id AS announcer_account_id").
		Joins("JOIN announcers ON announcers.id = campaigns.announcer_id").
		Where("campaigns.is_draft = ? AND campaigns.is_completed = ?", false, false).
		Order("campaigns.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load campaigns for reminders: %w", err)
	}

	var due []Reminder
	for _, r := range rows {
		if dayKey(time.Time(r.StartDate)) == tomorrow {
			due = append(due, Reminder{r.ID, r.Name, r.AnnouncerAccountID, EventStart, time.Time(r.StartDate)})
		}
		if dayKey(time.Time(r.EndDate)) == tomorrow {
			due = append(due, Reminder{r.ID, r.Name, r.AnnouncerAccountID, EventEnd, time.Time(r.EndDate)})
		}
	}
	return due, nil
}

// ReminderScheduler queues campaign_reminder notifications once per
// calendar day. The last completed day is checkpointed in the metadata
// table so restarts do not send duplicates.
type ReminderScheduler struct {
	db       *gorm.DB
	notify   notification.Publisher
	log      *logger.Logger
	interval time.Duration
	now      func() time.Time
}

func NewReminderScheduler(db *gorm.DB, notify notification.Publisher, log *logger.Logger, interval time.Duration) *ReminderScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderScheduler{db: db, notify: notify, log: log, interval: interval, now: time.Now}
}

func (s *ReminderScheduler) Run(handle *lifecycle.Handle) {
	defer handle.Close()
	s.log.Info("campaign reminder scheduler started", "interval", s.interval)

	for {
		if _, err := s.RunOnce(handle.Ctx()); err != nil && handle.Err() == nil {
			s.log.Error("campaign reminder pass failed", "error", err)
		}
		if err := handle.Sleep(s.interval); err != nil {
			s.log.Info("campaign reminder scheduler stopped")
			return
		}
	}
}

// RunOnce sends today's reminders unless that was already done and
// returns how many were queued.
func (s *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	today := s.now()
	db := s.db.WithContext(ctx)

	last, err := metadata.GetLastReminderRunDate(db)
	if err != nil {
		return 0, fmt.Errorf("read reminder checkpoint: %w", err)
	}
	if last == today.Format("2006-01-02") {
		return 0, nil
	}

	due, err := DueReminders(ctx, s.db, today)
	if err != nil {
		return 0, err
	}
	for _, r := range due {
		s.notify.Publish(notification.NewEvent(notification.KindCampaignReminder, r.AnnouncerAccountID, map[string]interface{}{
			"campaignId":   r.CampaignID,
			"campaignName": r.CampaignName,
			"event":        r.Event,
			"date":         r.Date.Format("2006-01-02"),
		}))
	}

	if err := metadata.SetLastReminderRunDate(db, today); err != nil {
		return len(due), fmt.Errorf("write reminder checkpoint: %w", err)
	}
	if len(due) > 0 {
		s.log.Info("campaign reminders queued", "count", len(due))
	}
	return len(due), nil
}
