package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ashureev/careerdesk/internal/domain"
	"github.com/ashureev/careerdesk/internal/shared"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	retry  shared.RetryPolicy
}

var _ Repository = (*SQLiteStore)(nil)

// NewSQLite opens (or creates) the database at dbPath, applies pending
// migrations and seeds the profile row.
func NewSQLite(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := dbPath
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: SQLite has a single writer and :memory: is per-connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, logger: logger, retry: shared.DefaultRetryPolicy}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := s.seedProfile(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed profile: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parse migration version from %q: %w", entry.Name(), err)
		}

		var applied int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %d: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}
		s.logger.Info("Applied migration", zap.Int("version", version), zap.String("file", entry.Name()))
	}

	return nil
}

func (s *SQLiteStore) seedProfile() error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO profile (id, full_name, current_role, target_role, bio)
		VALUES (?, ?, ?, ?, ?)`,
		domain.ProfileID, domain.DefaultFullName, domain.DefaultCurrentRole,
		domain.DefaultTargetRole, domain.DefaultBio,
	)
	return err
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) write(ctx context.Context, op string, fn func() error) error {
	return shared.RetryOnConflict(ctx, s.retry, s.logger, op, fn)
}

// --- Profile ---

// GetProfile returns the singleton profile.
func (s *SQLiteStore) GetProfile(ctx context.Context) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, current_role, target_role, bio,
		       notion_token, linkedin_token, github_token
		FROM profile WHERE id = ?`, domain.ProfileID)

	var p domain.Profile
	var fullName, currentRole, targetRole, bio sql.NullString
	var notion, linkedin, github sql.NullString
	err := row.Scan(&p.ID, &fullName, &currentRole, &targetRole, &bio, &notion, &linkedin, &github)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile row: %w", err)
	}

	p.FullName = fullName.String
	p.CurrentRole = currentRole.String
	p.TargetRole = targetRole.String
	p.Bio = bio.String
	p.NotionToken = notion.String
	p.LinkedInToken = linkedin.String
	p.GitHubToken = github.String
	return &p, nil
}

// UpdateProfile overwrites the editable text fields.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, f domain.ProfileFields) error {
	return s.write(ctx, "update_profile", func() error {
		_, err := s.db.ExecContext(ctx, `
			UPDATE profile SET full_name = ?, current_role = ?, target_role = ?, bio = ?
			WHERE id = ?`,
			f.FullName, f.CurrentRole, f.TargetRole, f.Bio, domain.ProfileID)
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		return nil
	})
}

func tokenColumn(service domain.Service) (string, error) {
	switch service {
	case domain.ServiceNotion:
		return "notion_token", nil
	case domain.ServiceGitHub:
		return "github_token", nil
	case domain.ServiceLinkedIn:
		return "linkedin_token", nil
	}
	return "", fmt.Errorf("unknown service %q", service)
}

// SetToken stores or clears a service token.
func (s *SQLiteStore) SetToken(ctx context.Context, service domain.Service, token string) error {
	col, err := tokenColumn(service)
	if err != nil {
		return err
	}

	var value any
	if token != "" {
		value = token
	}

	return s.write(ctx, "set_token", func() error {
		if _, err := s.db.ExecContext(ctx, `UPDATE profile SET `+col+` = ? WHERE id = ?`, value, domain.ProfileID); err != nil {
			return fmt.Errorf("set %s: %w", col, err)
		}
		return nil
	})
}

// SetTokenIfEmpty stores a token only when the column is empty.
func (s *SQLiteStore) SetTokenIfEmpty(ctx context.Context, service domain.Service, token string) (bool, error) {
	col, err := tokenColumn(service)
	if err != nil {
		return false, err
	}

	var rows int64
	err = s.write(ctx, "set_token_if_empty", func() error {
		result, err := s.db.ExecContext(ctx,
			`UPDATE profile SET `+col+` = ? WHERE id = ? AND (`+col+` IS NULL OR `+col+` = '')`,
			token, domain.ProfileID)
		if err != nil {
			return fmt.Errorf("backfill %s: %w", col, err)
		}
		rows, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		return nil
	})
	return rows > 0, err
}

// --- Skills ---

// ListSkills returns all skills in insertion order.
func (s *SQLiteStore) ListSkills(ctx context.Context) ([]domain.Skill, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, level, category FROM skills ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	defer rows.Close()

	skills := []domain.Skill{}
	for rows.Next() {
		var sk domain.Skill
		var category sql.NullString
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.Level, &category); err != nil {
			return nil, fmt.Errorf("scan skill row: %w", err)
		}
		sk.Category = category.String
		skills = append(skills, sk)
	}
	return skills, rows.Err()
}

// CreateSkill inserts a skill and returns its id.
func (s *SQLiteStore) CreateSkill(ctx context.Context, sk domain.Skill) (int64, error) {
	return s.insert(ctx, "create_skill",
		`INSERT INTO skills (name, level, category) VALUES (?, ?, ?)`,
		sk.Name, sk.Level, sk.Category)
}

// DeleteSkill removes a skill. Missing ids are not an error.
func (s *SQLiteStore) DeleteSkill(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "skills", id)
}

// --- Education ---

// ListEducation returns all education records in insertion order.
func (s *SQLiteStore) ListEducation(ctx context.Context) ([]domain.Education, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, institution, degree, field, start_date, end_date
		FROM education ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query education: %w", err)
	}
	defer rows.Close()

	records := []domain.Education{}
	for rows.Next() {
		var e domain.Education
		var degree, field, start, end sql.NullString
		if err := rows.Scan(&e.ID, &e.Institution, &degree, &field, &start, &end); err != nil {
			return nil, fmt.Errorf("scan education row: %w", err)
		}
		e.Degree = degree.String
		e.Field = field.String
		e.StartDate = start.String
		e.EndDate = end.String
		records = append(records, e)
	}
	return records, rows.Err()
}

// CreateEducation inserts an education record and returns its id.
func (s *SQLiteStore) CreateEducation(ctx context.Context, e domain.Education) (int64, error) {
	return s.insert(ctx, "create_education",
		`INSERT INTO education (institution, degree, field, start_date, end_date) VALUES (?, ?, ?, ?, ?)`,
		e.Institution, e.Degree, e.Field, e.StartDate, e.EndDate)
}

// DeleteEducation removes an education record. Missing ids are not an error.
func (s *SQLiteStore) DeleteEducation(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "education", id)
}

// --- Goals ---

// ListGoals returns all goals in insertion order.
func (s *SQLiteStore) ListGoals(ctx context.Context) ([]domain.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, deadline, status
		FROM goals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	goals := []domain.Goal{}
	for rows.Next() {
		var g domain.Goal
		var description, deadline sql.NullString
		var status string
		if err := rows.Scan(&g.ID, &g.Title, &description, &deadline, &status); err != nil {
			return nil, fmt.Errorf("scan goal row: %w", err)
		}
		g.Description = description.String
		g.Deadline = deadline.String
		g.Status = domain.GoalStatus(status)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// CreateGoal inserts a goal and returns its id.
func (s *SQLiteStore) CreateGoal(ctx context.Context, g domain.Goal) (int64, error) {
	return s.insert(ctx, "create_goal",
		`INSERT INTO goals (title, description, deadline, status) VALUES (?, ?, ?, ?)`,
		g.Title, g.Description, g.Deadline, string(g.Status))
}

// DeleteGoal removes a goal. Missing ids are not an error.
func (s *SQLiteStore) DeleteGoal(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "goals", id)
}

// SetGoalStatus sets the status of a goal. Setting the current value again
// is a successful no-op.
func (s *SQLiteStore) SetGoalStatus(ctx context.Context, id int64, status domain.GoalStatus) error {
	return s.write(ctx, "set_goal_status", func() error {
		result, err := s.db.ExecContext(ctx, `UPDATE goals SET status = ? WHERE id = ?`, string(status), id)
		if err != nil {
			return fmt.Errorf("update goal status: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *SQLiteStore) insert(ctx context.Context, op, query string, args ...any) (int64, error) {
	var id int64
	err := s.write(ctx, op, func() error {
		result, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("%s: last insert id: %w", op, err)
		}
		return nil
	})
	return id, err
}

// deleteByID is only called with the fixed table names above.
func (s *SQLiteStore) deleteByID(ctx context.Context, table string, id int64) error {
	return s.write(ctx, "delete_"+table, func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
		if rows, err := result.RowsAffected(); err == nil && rows == 0 {
			s.logger.Debug("Delete matched no rows", zap.String("table", table), zap.Int64("id", id))
		}
		return nil
	})
}
