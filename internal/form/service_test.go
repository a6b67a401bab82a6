package form

import (
	"context"
	"testing"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/campaign"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/SlpAus/smartpanel-backend/internal/platform/database/dbtest"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const owner = 5

type fixture struct {
	db       *gorm.DB
	svc      *Service
	campaign campaign.Campaign
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, append([]interface{}{&campaign.Campaign{}}, Models...)...)
	c := campaign.Campaign{
		AnnouncerID:  owner,
		Name:         "Soda",
		StartDate:    datatypes.Date(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:      datatypes.Date(time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC)),
		Status:       campaign.StatusActive,
		MaxPanelists: 10,
		CampaignType: "SURVEY",
		Visibility:   "PUBLIC",
		TargetGender: "ANY",
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatal(err)
	}
	return &fixture{db: db, svc: NewService(db, logger.Nop()), campaign: c}
}

func (f *fixture) form(t *testing.T) *Form {
	t.Helper()
	created, err := f.svc.CreateForm(context.Background(), owner, CreateFormInput{CampaignID: f.campaign.ID, Title: "Soda survey"})
	if err != nil {
		t.Fatal(err)
	}
	return created
}

func (f *fixture) section(t *testing.T, formID uint, title string, order int) *Section {
	t.Helper()
	sec, err := f.svc.AddSection(context.Background(), owner, formID, SectionInput{Title: title, Order: order})
	if err != nil {
		t.Fatal(err)
	}
	return sec
}

func (f *fixture) question(t *testing.T, sectionID uint, in QuestionInput) *Question {
	t.Helper()
	q, err := f.svc.AddQuestion(context.Background(), owner, sectionID, in)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func TestCreateFormOnePerCampaign(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.form(t)

	_, err := f.svc.CreateForm(ctx, owner, CreateFormInput{CampaignID: f.campaign.ID, Title: "Again"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second form err = %v, want conflict", err)
	}
	_, err = f.svc.CreateForm(ctx, owner+1, CreateFormInput{CampaignID: f.campaign.ID, Title: "Not mine"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("foreign campaign err = %v, want not found", err)
	}
}

func TestGetFormOrdersByOrderThenID(t *testing.T) {
	f := setup(t)
	fm := f.form(t)

	late := f.section(t, fm.ID, "late", 2)
	firstTie := f.section(t, fm.ID, "first tie", 1)
	secondTie := f.section(t, fm.ID, "second tie", 1)

	q3 := f.question(t, firstTie.ID, QuestionInput{Text: "c", QuestionType: "text", Order: 3})
	q1 := f.question(t, firstTie.ID, QuestionInput{Text: "a", QuestionType: "text", Order: 0})
	q2 := f.question(t, firstTie.ID, QuestionInput{Text: "b", QuestionType: "text", Order: 0})

	got, err := f.svc.GetForm(context.Background(), fm.ID)
	if err != nil {
		t.Fatal(err)
	}
	wantSections := []uint{firstTie.ID, secondTie.ID, late.ID}
	for i, sec := range got.Sections {
		if sec.ID != wantSections[i] {
			t.Fatalf("section order = %v, want %v", sectionIDs(got.Sections), wantSections)
		}
	}
	qs := got.Sections[0].Questions
	if len(qs) != 3 || qs[0].ID != q1.ID || qs[1].ID != q2.ID || qs[2].ID != q3.ID {
		t.Fatalf("question order wrong: %+v", qs)
	}
}

func sectionIDs(secs []Section) []uint {
	ids := make([]uint, len(secs))
	for i, s := range secs {
		ids[i] = s.ID
	}
	return ids
}

func TestAddQuestionValidation(t *testing.T) {
	f := setup(t)
	fm := f.form(t)
	sec := f.section(t, fm.ID, "main", 0)
	ctx := context.Background()

	if _, err := f.svc.AddQuestion(ctx, owner, sec.ID, QuestionInput{Text: "x", QuestionType: "slider"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("unknown type err = %v", err)
	}
	if _, err := f.svc.AddQuestion(ctx, owner, sec.ID, QuestionInput{Text: "x", QuestionType: "radio"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("radio without options err = %v", err)
	}
	if _, err := f.svc.AddQuestion(ctx, owner, 999, QuestionInput{Text: "x", QuestionType: "text"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing section err = %v", err)
	}

	// trigger from another form
	other := campaign.Campaign{AnnouncerID: owner, Name: "Other", CampaignType: "SURVEY", Visibility: "PUBLIC", TargetGender: "ANY", MaxPanelists: 1, Status: campaign.StatusActive}
	f.db.Create(&other)
	otherForm, _ := f.svc.CreateForm(ctx, owner, CreateFormInput{CampaignID: other.ID, Title: "Other"})
	otherSec := f.section(t, otherForm.ID, "s", 0)
	foreign := f.question(t, otherSec.ID, QuestionInput{Text: "y", QuestionType: "text"})

	_, err := f.svc.AddQuestion(ctx, owner, sec.ID, QuestionInput{
		Text: "z", QuestionType: "text",
		Conditions: []ConditionInput{{TriggerQuestionID: foreign.ID, TriggerValue: "yes"}},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("cross-form trigger err = %v", err)
	}
}

func TestDuplicateFormCopiesStructureOnly(t *testing.T) {
	f := setup(t)
	fm := f.form(t)
	sec := f.section(t, fm.ID, "Taste", 0)
	trigger := f.question(t, sec.ID, QuestionInput{Text: "Like it?", QuestionType: "radio", Options: []string{"yes", "no"}})
	f.question(t, sec.ID, QuestionInput{
		Text: "Why?", QuestionType: "text", Order: 1,
		Conditions: []ConditionInput{{TriggerQuestionID: trigger.ID, TriggerValue: "yes"}},
	})

	// lock the source to show the copy is editable regardless
	f.db.Model(&Form{}).Where("id = ?", fm.ID).Update("editable", false)

	dup, err := f.svc.DuplicateForm(context.Background(), owner, fm.ID)
	if err != nil {
		t.Fatal(err)
	}
	if dup.ID == fm.ID || dup.Title != "Soda survey (copy)" || !dup.Editable || dup.CampaignID != f.campaign.ID {
		t.Fatalf("copy = %+v", dup)
	}
	if len(dup.Sections) != 1 || len(dup.Sections[0].Questions) != 2 {
		t.Fatalf("copied tree = %+v", dup.Sections)
	}
	for _, q := range dup.Sections[0].Questions {
		if len(q.Options) != 0 || len(q.Conditions) != 0 {
			t.Fatalf("question %d copied options or rules: %+v", q.ID, q)
		}
		if q.SectionID == nil || *q.SectionID != dup.Sections[0].ID {
			t.Fatalf("question %d points at section %v", q.ID, q.SectionID)
		}
	}

	if _, err := f.svc.DuplicateForm(context.Background(), owner, 4242); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing source err = %v", err)
	}
}

func TestFormBecomesReadOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	fm := f.form(t)
	sec := f.section(t, fm.ID, "s", 0)
	q := f.question(t, sec.ID, QuestionInput{Text: "q", QuestionType: "text"})

	f.db.Create(&PanelistResponse{PanelistID: 1, FormID: fm.ID, QuestionID: q.ID, Content: "draft", IsDraft: true})
	if _, err := f.svc.AddSection(ctx, owner, fm.ID, SectionInput{Title: "more"}); err != nil {
		t.Fatalf("drafts must not lock the form: %v", err)
	}

	f.db.Create(&PanelistResponse{PanelistID: 1, FormID: fm.ID, QuestionID: q.ID, Content: "final"})
	if _, err := f.svc.AddSection(ctx, owner, fm.ID, SectionInput{Title: "late"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want read-only validation", err)
	}
	if err := f.svc.DeleteQuestion(ctx, owner, q.ID); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("delete on read-only form err = %v", err)
	}
}

func TestExpiredFormIsReadOnly(t *testing.T) {
	f := setup(t)
	past := time.Now().Add(-time.Hour)
	fm, err := f.svc.CreateForm(context.Background(), owner, CreateFormInput{CampaignID: f.campaign.ID, Title: "old", ExpirationDate: &past})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.AddSection(context.Background(), owner, fm.ID, SectionInput{Title: "s"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want read-only validation", err)
	}
}

func TestDeleteQuestionCascades(t *testing.T) {
	f := setup(t)
	fm := f.form(t)
	sec := f.section(t, fm.ID, "s", 0)
	trigger := f.question(t, sec.ID, QuestionInput{Text: "pick", QuestionType: "checklist", Options: []string{"a", "b"}})
	dependent := f.question(t, sec.ID, QuestionInput{
		Text: "why", QuestionType: "text",
		Conditions: []ConditionInput{{TriggerQuestionID: trigger.ID, TriggerValue: "a"}},
	})

	draft := PanelistResponse{PanelistID: 1, FormID: fm.ID, QuestionID: trigger.ID, IsDraft: true,
		Selections: []ResponseSelection{{OptionID: trigger.Options[0].ID}}}
	f.db.Create(&draft)

	if err := f.svc.DeleteQuestion(context.Background(), owner, trigger.ID); err != nil {
		t.Fatal(err)
	}

	if n := count(t, f.db, &QuestionOption{}); n != 0 {
		t.Fatalf("options left: %d", n)
	}
	if n := count(t, f.db, &ConditionalLogic{}); n != 0 {
		t.Fatalf("rules left: %d", n)
	}
	if n := count(t, f.db, &PanelistResponse{}); n != 0 {
		t.Fatalf("responses left: %d", n)
	}
	if n := count(t, f.db, &ResponseSelection{}); n != 0 {
		t.Fatalf("selections left: %d", n)
	}
	var left []Question
	f.db.Find(&left)
	if len(left) != 1 || left[0].ID != dependent.ID {
		t.Fatalf("questions left: %+v", left)
	}
}

func TestUpdateQuestion(t *testing.T) {
	f := setup(t)
	fm := f.form(t)
	sec := f.section(t, fm.ID, "s", 0)
	q := f.question(t, sec.ID, QuestionInput{Text: "old", QuestionType: "text"})

	text, inactive := "new", false
	got, err := f.svc.UpdateQuestion(context.Background(), owner, q.ID, QuestionUpdate{Text: &text, IsActive: &inactive})
	if err != nil {
		t.Fatal(err)
	}
	var stored Question
	f.db.First(&stored, q.ID)
	if got.Text != "new" || stored.Text != "new" || stored.IsActive || !stored.IsRequired {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestFinalAnswersUsesLatestNonDraft(t *testing.T) {
	f := setup(t)
	fm := f.form(t)
	sec := f.section(t, fm.ID, "s", 0)
	text := f.question(t, sec.ID, QuestionInput{Text: "t", QuestionType: "text"})
	pick := f.question(t, sec.ID, QuestionInput{Text: "p", QuestionType: "checklist", Options: []string{"red", "blue"}})

	f.db.Create(&PanelistResponse{PanelistID: 1, FormID: fm.ID, QuestionID: text.ID, Content: "first"})
	f.db.Create(&PanelistResponse{PanelistID: 1, FormID: fm.ID, QuestionID: text.ID, Content: "second"})
	f.db.Create(&PanelistResponse{PanelistID: 1, FormID: fm.ID, QuestionID: text.ID, Content: "draft", IsDraft: true})
	f.db.Create(&PanelistResponse{PanelistID: 1, FormID: fm.ID, QuestionID: pick.ID,
		Selections: []ResponseSelection{{OptionID: pick.Options[0].ID}, {OptionID: pick.Options[1].ID}}})
	f.db.Create(&PanelistResponse{PanelistID: 2, FormID: fm.ID, QuestionID: text.ID, Content: "someone else"})

	answers, err := FinalAnswers(f.db, 1, fm.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := answers[text.ID]; len(got) != 1 || got[0] != "second" {
		t.Fatalf("text answer = %v", got)
	}
	if got := answers[pick.ID]; len(got) != 2 || got[0] != "red" || got[1] != "blue" {
		t.Fatalf("checklist answer = %v", got)
	}
}
