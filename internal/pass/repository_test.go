package pass

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupPassMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func passRowColumns() []string {
	return []string{"id", "member_id", "title", "starts_at", "ends_at", "next_payment_at", "price_cents", "active", "created_at"}
}

func TestCreatePassRow(t *testing.T) {
	repo, mock, close := setupPassMock(t)
	defer close()

	now := time.Now()
	ends := now.AddDate(1, 0, 0)
	nextPayment := now.AddDate(0, 1, 0)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO passes (member_id, title, starts_at, ends_at, next_payment_at, price_cents, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING `+passColumns+`
	`)).
		WithArgs(1, "Standard", now, ends, nextPayment, int64(14900)).
		WillReturnRows(sqlmock.NewRows(passRowColumns()).
			AddRow(10, 1, "Standard", now, ends, nextPayment, 14900, true, now))

	created, err := repo.CreatePass(context.Background(), &Pass{
		MemberID:      1,
		Title:         "Standard",
		StartsAt:      now,
		EndsAt:        ends,
		NextPaymentAt: nextPayment,
		PriceCents:    14900,
	})
	require.NoError(t, err)
	require.Equal(t, 10, created.ID)
	require.True(t, created.Active)
}

func TestFindActiveByMember(t *testing.T) {
	repo, mock, close := setupPassMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT `+passColumns+`
		FROM passes
		WHERE member_id = $1 AND active = TRUE
	`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(passRowColumns()).
			AddRow(10, 1, "Standard", now, now.AddDate(1, 0, 0), now.AddDate(0, 1, 0), 14900, true, now))

	p, err := repo.FindActiveByMember(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 10, p.ID)
}

func TestFindDueForBilling(t *testing.T) {
	repo, mock, close := setupPassMock(t)
	defer close()

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT `+passColumns+`
		FROM passes
		WHERE active = TRUE
		  AND next_payment_at >= $1
		  AND next_payment_at <= $2
		ORDER BY id
	`)).
		WithArgs(dayStart, dayEnd).
		WillReturnRows(sqlmock.NewRows(passRowColumns()).
			AddRow(10, 1, "Standard", now, now.AddDate(1, 0, 0), dayEnd, 14900, true, now).
			AddRow(11, 2, "Student", now, now.AddDate(0, 6, 0), dayEnd, 9900, true, now))

	due, err := repo.FindDueForBilling(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.Equal(t, 10, due[0].ID)
}

func TestDeactivateIfActive(t *testing.T) {
	repo, mock, close := setupPassMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE passes
		SET active = FALSE
		WHERE id = $1 AND active = TRUE
	`)).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := repo.DeactivateIfActive(context.Background(), 10)
	require.NoError(t, err)
	require.True(t, won)
}

func TestDeactivateIfActiveAlreadyInactive(t *testing.T) {
	repo, mock, close := setupPassMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE passes
		SET active = FALSE
		WHERE id = $1 AND active = TRUE
	`)).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.DeactivateIfActive(context.Background(), 10)
	require.NoError(t, err)
	require.False(t, won)
}

func TestSaveHistoricalPass(t *testing.T) {
	repo, mock, close := setupPassMock(t)
	defer close()

	now := time.Now()
	p := &Pass{ID: 10, MemberID: 1, Title: "Standard", StartsAt: now.AddDate(-1, 0, 0), EndsAt: now, PriceCents: 14900}

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO historical_passes (member_id, title, starts_at, ends_at, price_cents, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)).
		WithArgs(1, "Standard", p.StartsAt, p.EndsAt, int64(14900), now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.SaveHistoricalPass(context.Background(), p, now)
	require.NoError(t, err)
}

func TestAdvanceNextPayment(t *testing.T) {
	repo, mock, close := setupPassMock(t)
	defer close()

	next := time.Now().AddDate(0, 1, 0)

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE passes
		SET next_payment_at = $1
		WHERE id = $2
	`)).
		WithArgs(next, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AdvanceNextPayment(context.Background(), 10, next)
	require.NoError(t, err)
}
