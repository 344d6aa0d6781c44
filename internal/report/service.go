package report

import (
	"context"
	"errors"
	"time"

	"github.com/eruvierda/safe-commute/internal/category"
	"github.com/eruvierda/safe-commute/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

const maxDescriptionLen = 500

// ChangedChannel is the redis channel mutations publish to so every instance
// refreshes its live report cache ahead of the next poll.
const ChangedChannel = "reports:changed"

type Service struct {
	db     db.Querier
	redis  *redis.Client
	policy Policy
}

func NewService(q db.Querier, redisClient *redis.Client, policy Policy) *Service {
	return &Service{db: q, redis: redisClient, policy: policy}
}

func (s *Service) Policy() Policy {
	return s.policy
}

func (s *Service) Create(ctx context.Context, input Report) (Report, error) {
	if !input.Category.Valid() {
		return Report{}, errors.New("unknown category")
	}
	if input.Lat < -90 || input.Lat > 90 || input.Lng < -180 || input.Lng > 180 {
		return Report{}, errors.New("coordinates out of range")
	}
	if len(input.Description) > maxDescriptionLen {
		return Report{}, errors.New("description too long")
	}
	if input.UserID == "" {
		return Report{}, errors.New("owner required")
	}

	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO reports (id, category, description, location, user_id)
		VALUES ($1,$2,$3, ST_SetSRID(ST_MakePoint($4,$5), 4326)::geography, $6)
		RETURNING trust_score, is_resolved, created_at, last_confirmed_at
	`, input.ID, input.Category, input.Description, input.Lng, input.Lat, input.UserID)
	if err := row.Scan(&input.TrustScore, &input.IsResolved, &input.CreatedAt, &input.LastConfirmedAt); err != nil {
		return Report{}, err
	}

	s.publishChanged(ctx)
	return input, nil
}

func (s *Service) Get(ctx context.Context, id string) (Report, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, category, COALESCE(description,''), ST_Y(location::geometry), ST_X(location::geometry),
		       trust_score, is_resolved, user_id, created_at, last_confirmed_at
		FROM reports WHERE id=$1 AND deleted_at IS NULL
	`, id)
	var r Report
	if err := row.Scan(&r.ID, &r.Category, &r.Description, &r.Lat, &r.Lng, &r.TrustScore, &r.IsResolved, &r.UserID, &r.CreatedAt, &r.LastConfirmedAt); err != nil {
		return Report{}, err
	}
	return r, nil
}

// Active returns the live report set. The query prefilters with the longest
// TTL; per-category fast decay is applied in Go so the SQL stays index-friendly.
func (s *Service) Active(ctx context.Context) ([]Report, error) {
	cutoff := time.Now().Add(-s.policy.SlowTTL)
	rows, err := s.db.Query(ctx, `
		SELECT id, category, COALESCE(description,''), ST_Y(location::geometry), ST_X(location::geometry),
		       trust_score, is_resolved, user_id, created_at, last_confirmed_at
		FROM reports
		WHERE deleted_at IS NULL AND is_resolved = FALSE AND last_confirmed_at > $1
		ORDER BY created_at DESC
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	var reports []Report
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.ID, &r.Category, &r.Description, &r.Lat, &r.Lng, &r.TrustScore, &r.IsResolved, &r.UserID, &r.CreatedAt, &r.LastConfirmedAt); err != nil {
			return nil, err
		}
		if s.policy.IsActive(r, now) {
			reports = append(reports, r)
		}
	}
	return reports, nil
}

// Update edits category and description, owner-only inside the edit window.
func (s *Service) Update(ctx context.Context, id, userID string, newCategory category.Category, description string) (ActionResult, error) {
	if !newCategory.Valid() {
		return ActionResult{Success: false, Message: "unknown category"}, nil
	}
	if len(description) > maxDescriptionLen {
		return ActionResult{Success: false, Message: "description too long"}, nil
	}

	existing, err := s.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ActionResult{Success: false, Message: "report not found"}, nil
	}
	if err != nil {
		return ActionResult{}, err
	}
	if existing.UserID != userID {
		return ActionResult{Success: false, Message: "only the owner can edit this report"}, nil
	}
	if !s.policy.CanEdit(existing, time.Now(), userID) {
		return ActionResult{Success: false, Message: "edit window expired"}, nil
	}

	_, err = s.db.Exec(ctx, `
		UPDATE reports SET category=$2, description=$3 WHERE id=$1 AND deleted_at IS NULL
	`, id, newCategory, description)
	if err != nil {
		return ActionResult{}, err
	}

	s.publishChanged(ctx)
	return ActionResult{Success: true, Message: "report updated"}, nil
}

// SoftDelete marks an owner's report deleted. Deletion has no time window.
func (s *Service) SoftDelete(ctx context.Context, id, userID string) (ActionResult, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE reports SET deleted_at = now() WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL
	`, id, userID)
	if err != nil {
		return ActionResult{}, err
	}
	if tag.RowsAffected() == 0 {
		return ActionResult{Success: false, Message: "report not found or not owned by user"}, nil
	}

	s.publishChanged(ctx)
	return ActionResult{Success: true, Message: "report deleted"}, nil
}

// Resolve is a moderation action and is not owner-gated.
func (s *Service) Resolve(ctx context.Context, id string) (ActionResult, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE reports SET is_resolved = TRUE WHERE id=$1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return ActionResult{}, err
	}
	if tag.RowsAffected() == 0 {
		return ActionResult{Success: false, Message: "report not found"}, nil
	}

	s.publishChanged(ctx)
	return ActionResult{Success: true, Message: "report resolved"}, nil
}

func (s *Service) UserReports(ctx context.Context, userID string) ([]Report, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, category, COALESCE(description,''), ST_Y(location::geometry), ST_X(location::geometry),
		       trust_score, is_resolved, user_id, created_at, last_confirmed_at
		FROM reports
		WHERE user_id=$1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.ID, &r.Category, &r.Description, &r.Lat, &r.Lng, &r.TrustScore, &r.IsResolved, &r.UserID, &r.CreatedAt, &r.LastConfirmedAt); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (s *Service) publishChanged(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Publish(ctx, ChangedChannel, "refresh").Err()
}
