package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eruvierda/safe-commute/internal/category"

	"github.com/pashagolub/pgxmock/v3"
)

var errReport = errors.New("report error")

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	return mock
}

func TestCreateReport(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO reports`).
		WithArgs(pgxmock.AnyArg(), category.Flood, "water rising fast", 106.8, -6.2, "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"trust_score", "is_resolved", "created_at", "last_confirmed_at"}).
			AddRow(0, false, now, now))

	svc := NewService(mock, nil, DefaultPolicy())
	created, err := svc.Create(context.Background(), Report{
		Category:    category.Flood,
		Description: "water rising fast",
		Lat:         -6.2,
		Lng:         106.8,
		UserID:      "user-1",
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if created.ID == "" || created.TrustScore != 0 {
		t.Fatalf("unexpected created report: %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateReportValidation(t *testing.T) {
	svc := NewService(nil, nil, DefaultPolicy())

	cases := []Report{
		{Category: "earthquake", Lat: 0, Lng: 0, UserID: "u"},
		{Category: category.Flood, Lat: 91, Lng: 0, UserID: "u"},
		{Category: category.Flood, Lat: 0, Lng: -181, UserID: "u"},
		{Category: category.Flood, Lat: 0, Lng: 0, UserID: ""},
	}
	for i, input := range cases {
		if _, err := svc.Create(context.Background(), input); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}

	long := make([]byte, maxDescriptionLen+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err := svc.Create(context.Background(), Report{Category: category.Flood, Description: string(long), UserID: "u"})
	if err == nil {
		t.Fatalf("expected description length error")
	}
}

func reportRows(r Report) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "category", "description", "lat", "lng", "trust_score", "is_resolved", "user_id", "created_at", "last_confirmed_at"}).
		AddRow(r.ID, r.Category, r.Description, r.Lat, r.Lng, r.TrustScore, r.IsResolved, r.UserID, r.CreatedAt, r.LastConfirmedAt)
}

func TestActiveFiltersFastDecay(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	now := time.Now()
	stale := Report{ID: "r-stale", Category: category.Traffic, UserID: "u", CreatedAt: now, LastConfirmedAt: now.Add(-3 * time.Hour)}
	fresh := Report{ID: "r-fresh", Category: category.RoadDamage, UserID: "u", CreatedAt: now, LastConfirmedAt: now.Add(-3 * time.Hour)}

	rows := pgxmock.NewRows([]string{"id", "category", "description", "lat", "lng", "trust_score", "is_resolved", "user_id", "created_at", "last_confirmed_at"}).
		AddRow(stale.ID, stale.Category, "", 0.0, 0.0, 0, false, stale.UserID, stale.CreatedAt, stale.LastConfirmedAt).
		AddRow(fresh.ID, fresh.Category, "", 0.0, 0.0, 0, false, fresh.UserID, fresh.CreatedAt, fresh.LastConfirmedAt)

	mock.ExpectQuery(`SELECT id, category, COALESCE\(description,''\)`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(rows)

	svc := NewService(mock, nil, DefaultPolicy())
	active, err := svc.Active(context.Background())
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(active) != 1 || active[0].ID != "r-fresh" {
		t.Fatalf("expected only the slow-decay report, got %+v", active)
	}
}

func TestUpdateOwnerAndWindow(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	now := time.Now()
	owned := Report{ID: "r-1", Category: category.Flood, UserID: "user-1", CreatedAt: now.Add(-5 * time.Minute), LastConfirmedAt: now}

	mock.ExpectQuery(`SELECT id, category, COALESCE\(description,''\)`).
		WithArgs("r-1").
		WillReturnRows(reportRows(owned))
	mock.ExpectExec(`UPDATE reports SET category`).
		WithArgs("r-1", category.Traffic, "actually traffic").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := NewService(mock, nil, DefaultPolicy())
	result, err := svc.Update(context.Background(), "r-1", "user-1", category.Traffic, "actually traffic")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateRejections(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	now := time.Now()
	svc := NewService(mock, nil, DefaultPolicy())

	// Not the owner.
	other := Report{ID: "r-1", Category: category.Flood, UserID: "user-1", CreatedAt: now, LastConfirmedAt: now}
	mock.ExpectQuery(`SELECT id, category, COALESCE\(description,''\)`).
		WithArgs("r-1").
		WillReturnRows(reportRows(other))

	result, err := svc.Update(context.Background(), "r-1", "user-2", category.Flood, "")
	if err != nil || result.Success {
		t.Fatalf("expected owner rejection, got %+v err=%v", result, err)
	}

	// Window expired.
	old := Report{ID: "r-2", Category: category.Flood, UserID: "user-1", CreatedAt: now.Add(-16 * time.Minute), LastConfirmedAt: now}
	mock.ExpectQuery(`SELECT id, category, COALESCE\(description,''\)`).
		WithArgs("r-2").
		WillReturnRows(reportRows(old))

	result, err = svc.Update(context.Background(), "r-2", "user-1", category.Flood, "")
	if err != nil || result.Success {
		t.Fatalf("expected window rejection, got %+v err=%v", result, err)
	}
	if result.Message != "edit window expired" {
		t.Fatalf("unexpected message: %s", result.Message)
	}

	// Unknown category short-circuits before any query.
	result, err = svc.Update(context.Background(), "r-3", "user-1", "earthquake", "")
	if err != nil || result.Success {
		t.Fatalf("expected category rejection")
	}
}

func TestUpdateNotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, category, COALESCE\(description,''\)`).
		WithArgs("r-missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "category", "description", "lat", "lng", "trust_score", "is_resolved", "user_id", "created_at", "last_confirmed_at"}))

	svc := NewService(mock, nil, DefaultPolicy())
	result, err := svc.Update(context.Background(), "r-missing", "user-1", category.Flood, "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if result.Success || result.Message != "report not found" {
		t.Fatalf("expected not found, got %+v", result)
	}
}

func TestSoftDelete(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectExec(`UPDATE reports SET deleted_at`).
		WithArgs("r-1", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := NewService(mock, nil, DefaultPolicy())
	result, err := svc.SoftDelete(context.Background(), "r-1", "user-1")
	if err != nil || !result.Success {
		t.Fatalf("expected delete success, got %+v err=%v", result, err)
	}

	mock.ExpectExec(`UPDATE reports SET deleted_at`).
		WithArgs("r-1", "user-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	result, err = svc.SoftDelete(context.Background(), "r-1", "user-2")
	if err != nil || result.Success {
		t.Fatalf("expected delete rejection, got %+v err=%v", result, err)
	}
}

func TestResolve(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectExec(`UPDATE reports SET is_resolved`).
		WithArgs("r-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := NewService(mock, nil, DefaultPolicy())
	result, err := svc.Resolve(context.Background(), "r-1")
	if err != nil || !result.Success {
		t.Fatalf("expected resolve success, got %+v err=%v", result, err)
	}

	mock.ExpectExec(`UPDATE reports SET is_resolved`).
		WithArgs("r-gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	result, err = svc.Resolve(context.Background(), "r-gone")
	if err != nil || result.Success {
		t.Fatalf("expected resolve not found, got %+v err=%v", result, err)
	}
}

func TestUserReports(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, category, COALESCE\(description,''\)`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "category", "description", "lat", "lng", "trust_score", "is_resolved", "user_id", "created_at", "last_confirmed_at"}).
			AddRow("r-1", category.Flood, "desc", -6.2, 106.8, 1, false, "user-1", now, now))

	svc := NewService(mock, nil, DefaultPolicy())
	reports, err := svc.UserReports(context.Background(), "user-1")
	if err != nil || len(reports) != 1 {
		t.Fatalf("user reports: %v (%d)", err, len(reports))
	}
}

func TestQueryErrors(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	svc := NewService(mock, nil, DefaultPolicy())

	mock.ExpectQuery(`INSERT INTO reports`).
		WithArgs(pgxmock.AnyArg(), category.Flood, "", 0.0, 0.0, "u").
		WillReturnError(errReport)
	if _, err := svc.Create(context.Background(), Report{Category: category.Flood, UserID: "u"}); err == nil {
		t.Fatalf("expected create error")
	}

	mock.ExpectQuery(`SELECT id, category, COALESCE\(description,''\)`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errReport)
	if _, err := svc.Active(context.Background()); err == nil {
		t.Fatalf("expected active error")
	}

	mock.ExpectExec(`UPDATE reports SET deleted_at`).
		WithArgs("r", "u").
		WillReturnError(errReport)
	if _, err := svc.SoftDelete(context.Background(), "r", "u"); err == nil {
		t.Fatalf("expected delete error")
	}

	mock.ExpectQuery(`SELECT id, category, COALESCE\(description,''\)`).
		WithArgs("u").
		WillReturnError(errReport)
	if _, err := svc.UserReports(context.Background(), "u"); err == nil {
		t.Fatalf("expected user reports error")
	}
}
