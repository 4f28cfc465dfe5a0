package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/qed-utility/portal-backend/model"
)

// ErrUserNotFound is returned when a username has no row in the users table.
var ErrUserNotFound = errors.New("user not found")

// EnsureGroup creates a group if absent. Returns true when a row was created.
func (db DBConnection) EnsureGroup(ctx context.Context, name, description string) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO groups (id, name, description) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO NOTHING`,
		uuid.NewString(), name, description)
	if err != nil {
		return false, fmt.Errorf("ensure group %s: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListGroups returns every group ordered by name.
func (db DBConnection) ListGroups(ctx context.Context) ([]model.Group, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, description, created_at FROM groups ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// SeedReference inserts the fixed circle and activity lists if absent.
func (db DBConnection) SeedReference(ctx context.Context, circles, activities []string) error {
	for _, c := range circles {
		if _, err := db.Pool.Exec(ctx,
			`INSERT INTO circles (name) VALUES ($1) ON CONFLICT DO NOTHING`, c); err != nil {
			return fmt.Errorf("seed circle %s: %w", c, err)
		}
	}
	for _, a := range activities {
		if _, err := db.Pool.Exec(ctx,
			`INSERT INTO activities (name) VALUES ($1) ON CONFLICT DO NOTHING`, a); err != nil {
			return fmt.Errorf("seed activity %s: %w", a, err)
		}
	}
	return nil
}

// Circles returns the known circle names.
func (db DBConnection) Circles(ctx context.Context) ([]string, error) {
	return db.stringColumn(ctx, `SELECT name FROM circles ORDER BY name`)
}

// Activities returns the known activity types.
func (db DBConnection) Activities(ctx context.Context) ([]string, error) {
	return db.stringColumn(ctx, `SELECT name FROM activities ORDER BY name`)
}

func (db DBConnection) stringColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetUser fetches a user and its group memberships by username.
func (db DBConnection) GetUser(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := db.Pool.QueryRow(ctx,
		`SELECT id, username, email, first_name, last_name, password_hash,
		        auth_provider, is_active, created_at, updated_at
		 FROM users WHERE LOWER(username) = LOWER($1)`, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
			&u.PasswordHash, &u.AuthProvider, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	groups, err := db.Memberships(ctx, u.Username)
	if err != nil {
		return nil, err
	}
	u.Groups = groups
	return &u, nil
}

// UpsertUser creates or refreshes a user row keyed by username.
func (db DBConnection) UpsertUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.UpdatedAt = time.Now().UTC()
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO users (id, username, email, first_name, last_name,
		                    password_hash, auth_provider, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (username) DO UPDATE SET
		   email = EXCLUDED.email,
		   first_name = EXCLUDED.first_name,
		   last_name = EXCLUDED.last_name,
		   auth_provider = EXCLUDED.auth_provider,
		   is_active = EXCLUDED.is_active,
		   updated_at = EXCLUDED.updated_at`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName,
		u.PasswordHash, u.AuthProvider, u.IsActive, u.CreatedAt, u.UpdatedAt)
	return err
}

// Memberships returns the group names a user belongs to.
func (db DBConnection) Memberships(ctx context.Context, username string) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT group_name FROM memberships WHERE username = $1 ORDER BY group_name`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// ReplaceMemberships makes the stored membership set match the given one.
// The workflow database is the source of truth for synced users.
func (db DBConnection) ReplaceMemberships(ctx context.Context, username string, groups []string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM memberships WHERE username = $1`, username); err != nil {
		return err
	}
	for _, g := range groups {
		if _, err := tx.Exec(ctx,
			`INSERT INTO memberships (username, group_name) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, username, g); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// RecordFilter narrows record listings for export and browsing.
type RecordFilter struct {
	Start    *time.Time
	End      *time.Time
	Circle   string
	Activity string
}

// ListRecords returns records matching the filter, newest start date first.
func (db DBConnection) ListRecords(ctx context.Context, f RecordFilter) ([]model.Record, error) {
	query := `SELECT id, qacajobid, siteid, sitename, circle, client, activitytype,
	                 status, startdate, finalduedate, created_by, created_at, updated_at
	          FROM records WHERE 1=1`
	args := []interface{}{}
	n := 0

	add := func(clause string, val interface{}) {
		n++
		query += fmt.Sprintf(" AND "+clause, n)
		args = append(args, val)
	}
	if f.Start != nil {
		add("startdate >= $%d", *f.Start)
	}
	if f.End != nil {
		add("startdate <= $%d", *f.End)
	}
	if f.Circle != "" {
		add("circle = $%d", f.Circle)
	}
	if f.Activity != "" {
		add("activitytype = $%d", f.Activity)
	}
	query += " ORDER BY startdate DESC, qacajobid"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(&r.ID, &r.JobID, &r.SiteID, &r.SiteName, &r.Circle,
			&r.Client, &r.Activity, &r.Status, &r.StartDate, &r.DueDate,
			&r.CreatedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// WriteAudit appends an audit entry for a bulk operation.
func (db DBConnection) WriteAudit(ctx context.Context, entry model.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO audit_log (id, username, operation, row_count, detail)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.Username, entry.Operation, entry.RowCount, entry.Detail)
	return err
}
