package vote

import (
	"context"
	"errors"

	"github.com/eruvierda/safe-commute/internal/db"
	"github.com/eruvierda/safe-commute/internal/report"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidDirection means the caller passed a direction outside {up, down}.
// That is a contract violation, not a runtime condition.
var ErrInvalidDirection = errors.New("invalid vote direction")

// Ledger is the sole mutator of report trust scores. Every application runs
// in one transaction: the (report, user) vote row is locked, inserted or
// flipped, and the aggregate adjusted with a relative increment. The score is
// never read, recomputed, and written back from caller state.
type Ledger struct {
	db    db.Querier
	redis *redis.Client
}

func NewLedger(q db.Querier, redisClient *redis.Client) *Ledger {
	return &Ledger{db: q, redis: redisClient}
}

// Apply records one user's vote on one report and returns the committed
// score. Re-casting the same direction is a no-op; the opposite direction
// flips the vote and moves the score by two.
func (l *Ledger) Apply(ctx context.Context, reportID, userID string, direction Direction) (VoteResult, error) {
	if userID == "" {
		return VoteResult{Success: false, Message: "authentication required"}, nil
	}
	if !direction.Valid() {
		return VoteResult{}, ErrInvalidDirection
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return VoteResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM reports WHERE id=$1 AND deleted_at IS NULL)
	`, reportID).Scan(&exists)
	if err != nil {
		return VoteResult{}, err
	}
	if !exists {
		return VoteResult{Success: false, Message: "report not found"}, nil
	}

	var prior Direction
	err = tx.QueryRow(ctx, `
		SELECT direction FROM report_votes WHERE report_id=$1 AND user_id=$2 FOR UPDATE
	`, reportID, userID).Scan(&prior)

	var delta int
	var message string
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := tx.Exec(ctx, `
			INSERT INTO report_votes (report_id, user_id, direction) VALUES ($1,$2,$3)
		`, reportID, userID, direction); err != nil {
			return VoteResult{}, err
		}
		delta = direction.delta()
		message = "vote recorded"
	case err != nil:
		return VoteResult{}, err
	case prior == direction:
		message = "already voted this direction"
	default:
		if _, err := tx.Exec(ctx, `
			UPDATE report_votes SET direction=$3, cast_at=now() WHERE report_id=$1 AND user_id=$2
		`, reportID, userID, direction); err != nil {
			return VoteResult{}, err
		}
		delta = 2 * direction.delta()
		message = "vote changed"
	}

	var score int
	if delta == 0 {
		err = tx.QueryRow(ctx, `
			SELECT trust_score FROM reports WHERE id=$1 AND deleted_at IS NULL
		`, reportID).Scan(&score)
	} else if direction == Up {
		// An upvote is a positive confirmation and refreshes the TTL clock.
		err = tx.QueryRow(ctx, `
			UPDATE reports SET trust_score = trust_score + $2, last_confirmed_at = now()
			WHERE id=$1 AND deleted_at IS NULL
			RETURNING trust_score
		`, reportID, delta).Scan(&score)
	} else {
		err = tx.QueryRow(ctx, `
			UPDATE reports SET trust_score = trust_score + $2
			WHERE id=$1 AND deleted_at IS NULL
			RETURNING trust_score
		`, reportID, delta).Scan(&score)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return VoteResult{Success: false, Message: "report not found"}, nil
	}
	if err != nil {
		return VoteResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return VoteResult{}, err
	}

	changed := delta != 0
	if changed {
		l.publishChanged(ctx)
	}
	return VoteResult{Success: true, TrustScore: score, Changed: changed, Message: message}, nil
}

// History returns every vote a user has cast, newest first, joined with the
// current state of the voted report.
func (l *Ledger) History(ctx context.Context, userID string) ([]UserVote, error) {
	rows, err := l.db.Query(ctx, `
		SELECT v.direction, v.cast_at, v.report_id, r.category, COALESCE(r.description,''),
		       ST_Y(r.location::geometry), ST_X(r.location::geometry),
		       r.created_at, r.trust_score, (r.deleted_at IS NOT NULL)
		FROM report_votes v
		JOIN reports r ON r.id = v.report_id
		WHERE v.user_id=$1
		ORDER BY v.cast_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []UserVote
	for rows.Next() {
		var v UserVote
		if err := rows.Scan(&v.Direction, &v.CastAt, &v.ReportID, &v.ReportCategory, &v.ReportDescription,
			&v.ReportLat, &v.ReportLng, &v.ReportCreatedAt, &v.CurrentTrustScore, &v.ReportDeleted); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, nil
}

func (l *Ledger) publishChanged(ctx context.Context) {
	if l.redis == nil {
		return
	}
	_ = l.redis.Publish(ctx, report.ChangedChannel, "refresh").Err()
}
