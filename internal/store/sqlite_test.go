package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ashureev/careerdesk/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(MemoryPath, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestProfileSeededWithDefaults(t *testing.T) {
	s := newTestStore(t)

	p, err := s.GetProfile(context.Background())
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.ID != domain.ProfileID {
		t.Errorf("expected id %d, got %d", domain.ProfileID, p.ID)
	}
	if p.FullName != domain.DefaultFullName || p.TargetRole != domain.DefaultTargetRole {
		t.Errorf("unexpected defaults: %+v", p)
	}
	if p.NotionToken != "" || p.GitHubToken != "" || p.LinkedInToken != "" {
		t.Errorf("expected no tokens, got %+v", p)
	}
}

func TestReopenKeepsSingleProfileRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "career.db")

	s, err := NewSQLite(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := s.UpdateProfile(ctx, domain.ProfileFields{FullName: "Ada"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	_ = s.Close()

	s, err = NewSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM profile").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one profile row, got %d", count)
	}
	p, err := s.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.FullName != "Ada" {
		t.Errorf("seed overwrote existing profile: %q", p.FullName)
	}
}

func TestUpdateProfileLeavesTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetToken(ctx, domain.ServiceGitHub, "gh-token"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	fields := domain.ProfileFields{
		FullName:    "Ada Lovelace",
		CurrentRole: "Engineer",
		TargetRole:  "Architect",
		Bio:         "Writes programs.",
	}
	if err := s.UpdateProfile(ctx, fields); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	p, err := s.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.FullName != fields.FullName || p.CurrentRole != fields.CurrentRole ||
		p.TargetRole != fields.TargetRole || p.Bio != fields.Bio {
		t.Errorf("fields not applied: %+v", p)
	}
	if p.GitHubToken != "gh-token" {
		t.Errorf("token changed by update: %q", p.GitHubToken)
	}
}

func TestSetTokenClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.SetToken(ctx, domain.ServiceNotion, "secret_abc")
	_ = s.SetToken(ctx, domain.ServiceGitHub, "gh")
	if err := s.SetToken(ctx, domain.ServiceNotion, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}

	p, _ := s.GetProfile(ctx)
	if p.NotionToken != "" {
		t.Errorf("expected notion token cleared, got %q", p.NotionToken)
	}
	if p.GitHubToken != "gh" {
		t.Errorf("clearing one token touched another: %q", p.GitHubToken)
	}
}

func TestSetTokenIfEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	wrote, err := s.SetTokenIfEmpty(ctx, domain.ServiceNotion, "first")
	if err != nil || !wrote {
		t.Fatalf("expected first write, got wrote=%v err=%v", wrote, err)
	}
	wrote, err = s.SetTokenIfEmpty(ctx, domain.ServiceNotion, "second")
	if err != nil || wrote {
		t.Fatalf("expected no second write, got wrote=%v err=%v", wrote, err)
	}

	p, _ := s.GetProfile(ctx)
	if p.NotionToken != "first" {
		t.Errorf("expected first, got %q", p.NotionToken)
	}
}

func TestSetTokenUnknownService(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetToken(context.Background(), domain.Service("myspace"), "x"); err == nil {
		t.Fatal("expected error for unknown service")
	}
}

func TestSkillLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateSkill(ctx, domain.Skill{Name: "Go", Level: 4, Category: "Teknik"})
	if err != nil {
		t.Fatalf("CreateSkill: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	skills, err := s.ListSkills(ctx)
	if err != nil {
		t.Fatalf("ListSkills: %v", err)
	}
	if len(skills) != 1 {
		t.Fatalf("expected 1 skill, got %d", len(skills))
	}
	want := domain.Skill{ID: id, Name: "Go", Level: 4, Category: "Teknik"}
	if skills[0] != want {
		t.Errorf("got %+v, want %+v", skills[0], want)
	}

	if err := s.DeleteSkill(ctx, id); err != nil {
		t.Fatalf("DeleteSkill: %v", err)
	}
	skills, _ = s.ListSkills(ctx)
	if len(skills) != 0 {
		t.Errorf("expected empty list, got %+v", skills)
	}

	if err := s.DeleteSkill(ctx, id); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
	if err := s.DeleteSkill(ctx, 9999); err != nil {
		t.Errorf("deleting unknown id should be a no-op, got %v", err)
	}
}

func TestIDsAreFresh(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, _ := s.CreateEducation(ctx, domain.Education{Institution: "ODTÜ"})
	_ = s.DeleteEducation(ctx, first)
	second, err := s.CreateEducation(ctx, domain.Education{Institution: "İTÜ", Degree: "BSc", Field: "CS", StartDate: "2015", EndDate: "2019"})
	if err != nil {
		t.Fatalf("CreateEducation: %v", err)
	}
	if second == first {
		t.Errorf("id %d reused after delete", first)
	}

	records, _ := s.ListEducation(ctx)
	if len(records) != 1 || records[0].ID != second || records[0].Field != "CS" || records[0].EndDate != "2019" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestGoalStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateGoal(ctx, domain.Goal{Title: "Ship v1", Status: domain.GoalPending})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	steps := []domain.GoalStatus{domain.GoalCompleted, domain.GoalCompleted, domain.GoalPending}
	for _, status := range steps {
		if err := s.SetGoalStatus(ctx, id, status); err != nil {
			t.Fatalf("SetGoalStatus(%s): %v", status, err)
		}
		goals, _ := s.ListGoals(ctx)
		if goals[0].Status != status {
			t.Fatalf("expected %s, got %s", status, goals[0].Status)
		}
	}

	if err := s.SetGoalStatus(ctx, 4242, domain.GoalCompleted); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMigrationsRecorded(t *testing.T) {
	s := newTestStore(t)

	var version int
	if err := s.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("query schema_version: %v", err)
	}
	if version < 1 {
		t.Errorf("expected at least migration 1, got %d", version)
	}
}
