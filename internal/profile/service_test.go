package profile

import (
	"context"
	"sync"
	"testing"

	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/SlpAus/smartpanel-backend/internal/platform/database/dbtest"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/internal/scoring"
	"gorm.io/gorm"
)

type award struct {
	panelistID uint
	action     scoring.Action
}

type fakeScores struct {
	mu     sync.Mutex
	awards []award
}

func (f *fakeScores) Award(_ context.Context, panelistID uint, action scoring.Action) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.awards = append(f.awards, award{panelistID, action})
	return 0, nil
}

func setup(t *testing.T) (*gorm.DB, *Service, *fakeScores) {
	t.Helper()
	db := dbtest.Open(t, &account.Account{}, &account.Interest{}, &Panelist{}, &Announcer{})
	if err := account.SeedInterests(db); err != nil {
		t.Fatal(err)
	}
	scores := &fakeScores{}
	return db, NewService(db, scores, logger.Nop()), scores
}

func profileInput(name string) PanelistProfileInput {
	return PanelistProfileInput{
		FullName:               name,
		Gender:                 "FEMALE",
		Birthday:               "1994-03-12",
		Location:               "Lyon",
		PreferredContactMethod: "EMAIL",
		Availability:           "EVENING",
		ExperienceLevel:        "BEGINNER",
		SocialMediaProfiles:    map[string]string{"instagram": "@jane"},
		InterestIDs:            []uint{1, 2},
	}
}

func signup(name, email string) PanelistSignup {
	return PanelistSignup{PanelistProfileInput: profileInput(name), Email: email, Password: "correct-horse"}
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func TestRegisterPanelistCreatesAccountAndProfile(t *testing.T) {
	db, svc, scores := setup(t)

	p, err := svc.RegisterPanelist(context.Background(), signup("Jane Doe", "jane@x.io"))
	if err != nil {
		t.Fatalf("RegisterPanelist: %v", err)
	}
	if p.Rank != scoring.RankBeginner || p.Score != 0 || len(p.Interests) != 2 {
		t.Fatalf("panelist = %+v", p)
	}

	var acct account.Account
	db.First(&acct, p.AccountID)
	if acct.Username != "jane_doe" || acct.Role != account.RolePanelist {
		t.Fatalf("account = %+v", acct)
	}
	if len(scores.awards) != 1 || scores.awards[0] != (award{p.ID, scoring.ActionRegister}) {
		t.Fatalf("awards = %+v", scores.awards)
	}
}

func TestRegisterPanelistDuplicateEmailPersistsNothing(t *testing.T) {
	db, svc, scores := setup(t)
	ctx := context.Background()

	if _, err := svc.RegisterPanelist(ctx, signup("Jane Doe", "jane@x.io")); err != nil {
		t.Fatal(err)
	}
	_, err := svc.RegisterPanelist(ctx, signup("John Roe", "jane@x.io"))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if n := count(t, db, &account.Account{}); n != 1 {
		t.Fatalf("accounts = %d, want 1", n)
	}
	if n := count(t, db, &Panelist{}); n != 1 {
		t.Fatalf("panelists = %d, want 1", n)
	}
	if len(scores.awards) != 1 {
		t.Fatalf("failed signup awarded points: %+v", scores.awards)
	}
}

func TestRegisterPanelistDuplicateNameRollsBackAccount(t *testing.T) {
	db, svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.RegisterPanelist(ctx, signup("Jane Doe", "jane@x.io")); err != nil {
		t.Fatal(err)
	}
	_, err := svc.RegisterPanelist(ctx, signup("Jane Doe", "other@x.io"))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if n := count(t, db, &account.Account{}); n != 1 {
		t.Fatalf("orphan account left behind: %d accounts", n)
	}
}

func TestRegisterPanelistWithReferrer(t *testing.T) {
	_, svc, scores := setup(t)
	ctx := context.Background()

	referrer, err := svc.RegisterPanelist(ctx, signup("Jane Doe", "jane@x.io"))
	if err != nil {
		t.Fatal(err)
	}
	in := signup("John Roe", "john@x.io")
	in.ReferrerID = &referrer.ID
	invited, err := svc.RegisterPanelist(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	want := []award{
		{referrer.ID, scoring.ActionRegister},
		{invited.ID, scoring.ActionRegister},
		{referrer.ID, scoring.ActionReferFriend},
	}
	if len(scores.awards) != len(want) {
		t.Fatalf("awards = %+v", scores.awards)
	}
	for i := range want {
		if scores.awards[i] != want[i] {
			t.Fatalf("awards = %+v, want %+v", scores.awards, want)
		}
	}

	missing := uint(999)
	in = signup("Max Poe", "max@x.io")
	in.ReferrerID = &missing
	if _, err := svc.RegisterPanelist(ctx, in); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("unknown referrer err = %v", err)
	}
}

func TestRegisterPanelistValidation(t *testing.T) {
	_, svc, _ := setup(t)
	in := signup("Jane Doe", "not-an-email")
	in.Birthday = "12/03/1994"

	if _, err := svc.RegisterPanelist(context.Background(), in); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestCompletePanelistProfileIsLazy(t *testing.T) {
	db, svc, scores := setup(t)
	ctx := context.Background()

	acct, err := account.CreateIdentity(db, account.IdentityInput{
		DisplayName: "bare user", Email: "bare@x.io", Password: "pw", Role: account.RolePanelist,
	})
	if err != nil {
		t.Fatal(err)
	}

	p, created, err := svc.CompletePanelistProfile(ctx, acct.ID, profileInput("Bare User"))
	if err != nil || !created {
		t.Fatalf("first completion: created=%v err=%v", created, err)
	}
	if p.Email != "bare@x.io" {
		t.Fatalf("email = %q, want account email", p.Email)
	}

	update := profileInput("Bare User")
	update.Location = "Paris"
	update.InterestIDs = []uint{3}
	p2, created, err := svc.CompletePanelistProfile(ctx, acct.ID, update)
	if err != nil || created {
		t.Fatalf("second completion: created=%v err=%v", created, err)
	}
	if p2.ID != p.ID || p2.Location != "Paris" || len(p2.Interests) != 1 || p2.Interests[0].ID != 3 {
		t.Fatalf("updated panelist = %+v", p2)
	}

	if len(scores.awards) != 1 || scores.awards[0] != (award{p.ID, scoring.ActionCompleteProfile}) {
		t.Fatalf("awards = %+v", scores.awards)
	}
}

func TestCompleteProfileRejectsAnnouncerAccount(t *testing.T) {
	db, svc, _ := setup(t)
	acct, _ := account.CreateIdentity(db, account.IdentityInput{
		DisplayName: "Acme", Email: "acme@x.io", Password: "pw", Role: account.RoleAnnouncer,
	})

	_, _, err := svc.CompletePanelistProfile(context.Background(), acct.ID, profileInput("Acme"))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestRegisterAnnouncer(t *testing.T) {
	_, svc, _ := setup(t)
	ctx := context.Background()
	in := AnnouncerSignup{
		CompanyName: "Acme Labs",
		Email:       "hq@acme.io",
		Password:    "correct-horse",
		Location:    "Berlin",
		Industry:    "TECH",
		CompanySize: "SMALL",
		Website:     "https://acme.io",
	}

	a, err := svc.RegisterAnnouncer(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if id, err := svc.AnnouncerIDForAccount(ctx, a.AccountID); err != nil || id != a.ID {
		t.Fatalf("AnnouncerIDForAccount = %d, %v", id, err)
	}

	in.Email = "other@acme.io"
	if _, err := svc.RegisterAnnouncer(ctx, in); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("duplicate company err = %v", err)
	}
}
