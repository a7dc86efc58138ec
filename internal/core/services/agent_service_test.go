package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/core/domain"

	"go.uber.org/zap"
)

func validApplication() SubmitApplicationInput {
	return SubmitApplicationInput{
		FullName:        "Ada Agent",
		Phone:           "+2348000000000",
		ExperienceYears: intPtr(3),
		Bio:             "Realtor in Agbor",
		Documents:       []string{"https://files.test/id.pdf"},
	}
}

func TestSubmitApplication(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agentID := f.verifiedUser(t, "Ada", "ada@x.com", domain.RoleAgent)

	app, err := f.agents.Submit(ctx, agentID, validApplication())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if app.Status != domain.ApplicationPending || app.UserID != agentID {
		t.Fatalf("unexpected application %+v", app)
	}

	u, _ := f.store.Users().GetByID(ctx, agentID)
	if !u.HasAppliedAsAgent || u.AgentApplicationID == nil || *u.AgentApplicationID != app.ID {
		t.Fatalf("user not linked to application: %+v", u)
	}

	alerts := f.dispatcher.byKind("admin-alert")
	if len(alerts) != 1 || alerts[0].To != f.cfg.AdminEmail {
		t.Fatalf("expected one admin alert, got %+v", alerts)
	}
	if !strings.Contains(alerts[0].HTML, "Ada Agent") {
		t.Fatal("admin alert must name the applicant")
	}

	_, err = f.agents.Submit(ctx, agentID, validApplication())
	if !errors.Is(err, domain.ErrValidation) || domain.PublicMessage(err) != "application already submitted" {
		t.Fatalf("expected duplicate submission to fail, got %v", err)
	}
}

func TestSubmitApplication_ZeroExperienceAllowed(t *testing.T) {
	f := newFixture(t)
	id := f.verifiedUser(t, "New", "new@x.com", domain.RoleAgent)

	in := validApplication()
	in.ExperienceYears = intPtr(0)
	if _, err := f.agents.Submit(context.Background(), id, in); err != nil {
		t.Fatalf("zero years is a valid answer: %v", err)
	}
}

func TestSubmitApplication_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.verifiedUser(t, "Ada", "ada@x.com", domain.RoleAgent)

	cases := map[string]func(*SubmitApplicationInput){
		"no documents":       func(in *SubmitApplicationInput) { in.Documents = nil },
		"blank documents":    func(in *SubmitApplicationInput) { in.Documents = []string{" "} },
		"missing experience": func(in *SubmitApplicationInput) { in.ExperienceYears = nil },
		"negative years":     func(in *SubmitApplicationInput) { in.ExperienceYears = intPtr(-1) },
		"missing bio":        func(in *SubmitApplicationInput) { in.Bio = "" },
		"missing phone":      func(in *SubmitApplicationInput) { in.Phone = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validApplication()
			mutate(&in)
			if _, err := f.agents.Submit(ctx, id, in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if ok, _ := f.store.Applications().ExistsByUserID(ctx, id); ok {
		t.Fatal("rejected submissions must not persist an application")
	}
	u, _ := f.store.Users().GetByID(ctx, id)
	if u.HasAppliedAsAgent {
		t.Fatal("user must not be flagged after a rejected submission")
	}
}

func TestApproveApplicationScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	adminID := f.admin(t)
	agentID := f.verifiedUser(t, "Ada", "ada@x.com", domain.RoleAgent)
	app, err := f.agents.Submit(ctx, agentID, validApplication())
	if err != nil {
		t.Fatal(err)
	}

	decided, err := f.agents.Approve(ctx, app.ID, adminID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if decided.Status != domain.ApplicationApproved || decided.ReviewedBy == nil || *decided.ReviewedBy != adminID {
		t.Fatalf("unexpected decision %+v", decided)
	}

	stored, _ := f.store.Applications().GetByID(ctx, app.ID)
	if stored.Status != domain.ApplicationApproved || stored.ReviewedAt == nil {
		t.Fatalf("approval not persisted: %+v", stored)
	}
	u, _ := f.store.Users().GetByID(ctx, agentID)
	if !u.IsApproved {
		t.Fatal("agent must be approved")
	}

	approvals := f.dispatcher.byKind("approval")
	if len(approvals) != 1 || approvals[0].To != "ada@x.com" {
		t.Fatalf("expected exactly one approval email to the applicant, got %+v", approvals)
	}

	mine, err := f.agents.GetMyApplication(ctx, agentID)
	if err != nil {
		t.Fatalf("my application: %v", err)
	}
	if mine.Reviewer == nil || mine.Reviewer.ID != adminID {
		t.Fatalf("expected reviewer summary, got %+v", mine.Reviewer)
	}
}

func TestDecideOnlyFromPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	adminID := f.admin(t)
	agentID := f.verifiedUser(t, "Ada", "ada@x.com", domain.RoleAgent)
	app, _ := f.agents.Submit(ctx, agentID, validApplication())

	if _, err := f.agents.Reject(ctx, app.ID, adminID, ""); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := f.agents.Approve(ctx, app.ID, adminID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected approve of rejected application to fail, got %v", err)
	}
	if _, err := f.agents.Reject(ctx, app.ID, adminID, "again"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected second reject to fail, got %v", err)
	}
	if _, err := f.agents.Approve(ctx, 999, adminID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected unknown application to fail, got %v", err)
	}

	stored, _ := f.store.Applications().GetByID(ctx, app.ID)
	if stored.Status != domain.ApplicationRejected || stored.RejectionReason != "" {
		t.Fatalf("later attempts must not mutate the application: %+v", stored)
	}
	u, _ := f.store.Users().GetByID(ctx, agentID)
	if u.IsApproved {
		t.Fatal("rejected agent must not be approved")
	}
	if n := len(f.dispatcher.byKind("approval")); n != 0 {
		t.Fatalf("no approval email expected, got %d", n)
	}
}

func TestRejectApplication_ReasonInEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	adminID := f.admin(t)

	a := f.verifiedUser(t, "A", "a@x.com", domain.RoleAgent)
	b := f.verifiedUser(t, "B", "b@x.com", domain.RoleAgent)
	appA, _ := f.agents.Submit(ctx, a, validApplication())
	appB, _ := f.agents.Submit(ctx, b, validApplication())

	if _, err := f.agents.Reject(ctx, appA.ID, adminID, "License expired"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.agents.Reject(ctx, appB.ID, adminID, "   "); err != nil {
		t.Fatal(err)
	}

	stored, _ := f.store.Applications().GetByID(ctx, appA.ID)
	if stored.RejectionReason != "License expired" {
		t.Fatalf("reason not stored: %q", stored.RejectionReason)
	}

	emails := f.dispatcher.byKind("rejection")
	if len(emails) != 2 {
		t.Fatalf("expected two rejection emails, got %d", len(emails))
	}
	if !strings.Contains(emails[0].HTML, "License expired") {
		t.Fatal("rejection email must carry the given reason")
	}
	if !strings.Contains(emails[1].HTML, defaultRejectionReason) {
		t.Fatal("rejection email must fall back to the default reason")
	}
}

// racingApplications lets another reviewer win between load and update
type racingApplications struct {
	repositories.AgentApplicationRepository
}

func (r racingApplications) DecideIfPending(ctx context.Context, id uint, d repositories.ApplicationDecision) (bool, error) {
	other := d
	other.Status = domain.ApplicationRejected
	if _, err := r.AgentApplicationRepository.DecideIfPending(ctx, id, other); err != nil {
		return false, err
	}
	return r.AgentApplicationRepository.DecideIfPending(ctx, id, d)
}

func TestApprove_LostRaceIsConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	adminID := f.admin(t)
	agentID := f.verifiedUser(t, "Ada", "ada@x.com", domain.RoleAgent)
	app, _ := f.agents.Submit(ctx, agentID, validApplication())

	notifier := NewNotificationService(f.dispatcher, f.cfg, zap.NewNop())
	svc := NewAgentService(racingApplications{f.store.Applications()}, f.store.Users(), notifier)

	if _, err := svc.Approve(ctx, app.ID, adminID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	u, _ := f.store.Users().GetByID(ctx, agentID)
	if u.IsApproved {
		t.Fatal("losing approval must not approve the agent")
	}
	if n := len(f.dispatcher.byKind("approval")); n != 0 {
		t.Fatalf("losing approval must not send email, got %d", n)
	}
}

func TestPendingApplications_NewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	adminID := f.admin(t)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []uint
	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		uid := f.verifiedUser(t, email, email, domain.RoleAgent)
		at := base.Add(time.Duration(i) * time.Hour)
		f.agents.now = func() time.Time { return at }
		app, err := f.agents.Submit(ctx, uid, validApplication())
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, app.ID)
	}
	f.agents.now = time.Now

	if _, err := f.agents.Approve(ctx, ids[1], adminID); err != nil {
		t.Fatal(err)
	}

	pending, err := f.agents.GetPendingApplications(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 || pending[0].ID != ids[2] || pending[1].ID != ids[0] {
		t.Fatalf("expected [%d %d], got %d items", ids[2], ids[0], len(pending))
	}
	if pending[0].Applicant == nil || pending[0].Applicant.Email != "c@x.com" {
		t.Fatalf("expected applicant summary, got %+v", pending[0].Applicant)
	}
}

func TestGetMyApplication_None(t *testing.T) {
	f := newFixture(t)
	id := f.verifiedUser(t, "A", "a@x.com", domain.RoleAgent)
	if _, err := f.agents.GetMyApplication(context.Background(), id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
