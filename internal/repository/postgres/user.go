package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"schedulebot/internal/domain"
	"schedulebot/internal/repository"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, role, current_phase, current_name, current_id,
	found_phase, found_name, found_id, found_type,
	show_groups, show_location, date_phase,
	subscription_phase, subscription_time, subscription_group, subscription_days,
	flow_version`

// updatable lists the columns a patch may touch
var updatable = map[domain.Field]struct{}{
	domain.FieldRole:              {},
	domain.FieldCurrentPhase:      {},
	domain.FieldCurrentName:       {},
	domain.FieldCurrentID:         {},
	domain.FieldFoundPhase:        {},
	domain.FieldFoundName:         {},
	domain.FieldFoundID:           {},
	domain.FieldFoundType:         {},
	domain.FieldShowGroups:        {},
	domain.FieldShowLocation:      {},
	domain.FieldDatePhase:         {},
	domain.FieldSubscriptionPhase: {},
	domain.FieldSubscriptionTime:  {},
	domain.FieldSubscriptionGroup: {},
	domain.FieldSubscriptionDays:  {},
	domain.FieldFlowVersion:       {},
}

type userRow struct {
	ID                int64          `db:"id"`
	Role              sql.NullString `db:"role"`
	CurrentPhase      int            `db:"current_phase"`
	CurrentName       sql.NullString `db:"current_name"`
	CurrentID         sql.NullString `db:"current_id"`
	FoundPhase        int            `db:"found_phase"`
	FoundName         sql.NullString `db:"found_name"`
	FoundID           sql.NullString `db:"found_id"`
	FoundType         sql.NullString `db:"found_type"`
	ShowGroups        bool           `db:"show_groups"`
	ShowLocation      bool           `db:"show_location"`
	DatePhase         int            `db:"date_phase"`
	SubscriptionPhase int            `db:"subscription_phase"`
	SubscriptionTime  sql.NullString `db:"subscription_time"`
	SubscriptionGroup sql.NullString `db:"subscription_group"`
	SubscriptionDays  sql.NullString `db:"subscription_days"`
	FlowVersion       int            `db:"flow_version"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:   r.ID,
		Role: domain.Role(r.Role.String),
		Current: domain.Selection{
			Phase: domain.Phase(r.CurrentPhase),
			Name:  r.CurrentName.String,
			ID:    r.CurrentID.String,
		},
		Found: domain.Selection{
			Phase: domain.Phase(r.FoundPhase),
			Name:  r.FoundName.String,
			ID:    r.FoundID.String,
		},
		FoundType:    domain.Role(r.FoundType.String),
		ShowGroups:   r.ShowGroups,
		ShowLocation: r.ShowLocation,
		DatePhase:    domain.Phase(r.DatePhase),
		Subscription: domain.Subscription{
			Phase: domain.SubscriptionPhase(r.SubscriptionPhase),
			Time:  r.SubscriptionTime.String,
			Group: r.SubscriptionGroup.String,
			Days:  domain.SubscriptionDays(r.SubscriptionDays.String),
		},
		FlowVersion: r.FlowVersion,
	}
}

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// FindUser loads the record of a user
func (r *UserRepo) FindUser(ctx context.Context, userID int64) (*domain.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &row, query, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}

	u := row.toDomain()
	return &u, nil
}

// InsertUser creates the default record for a new user
func (r *UserRepo) InsertUser(ctx context.Context, userID int64) (*domain.User, error) {
	query := `
		INSERT INTO users (id, flow_version)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userID, domain.CurrentFlowVersion); err != nil {
		return nil, fmt.Errorf("insert user %d: %w", userID, err)
	}
	return domain.NewUser(userID), nil
}

// UpdateUser writes the patched columns in a single statement
func (r *UserRepo) UpdateUser(ctx context.Context, userID int64, patch domain.Patch) error {
	if len(patch) == 0 {
		return nil
	}

	fields := patch.Fields()
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for i, f := range fields {
		if _, ok := updatable[f]; !ok {
			return fmt.Errorf("update user %d: unknown field %q", userID, f)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", f, i+1))
		args = append(args, columnValue(patch[f]))
	}
	args = append(args, userID)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user %d: %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

// ListSubscribers returns users with an active subscription delivered at the given HH:MM
func (r *UserRepo) ListSubscribers(ctx context.Context, at string) ([]domain.User, error) {
	var rows []userRow
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE subscription_phase = $1 AND subscription_time = $2
		ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query, int(domain.SubscriptionActive), at); err != nil {
		return nil, fmt.Errorf("list subscribers at %s: %w", at, err)
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

// columnValue converts a patch value to its column representation.
// Empty strings are stored as NULL.
func columnValue(v any) any {
	switch v := v.(type) {
	case string:
		return nullable(v)
	case domain.Role:
		return nullable(string(v))
	case domain.SubscriptionDays:
		return nullable(string(v))
	case domain.Phase:
		return int(v)
	case domain.SubscriptionPhase:
		return int(v)
	default:
		return v
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
