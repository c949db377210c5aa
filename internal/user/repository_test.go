package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupUserMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func userColumns() []string {
	return []string{
		"id", "name", "email", "password_hash", "kind",
		"payment_method_ref", "payment_method_expiry", "created_at",
	}
}

func TestCreateUser(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO users (name, email, password_hash, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, kind, payment_method_ref, payment_method_expiry, created_at
	`)).
		WithArgs("Jan", "jan@example.com", "hash", KindMember).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(1, "Jan", "jan@example.com", "hash", "member", nil, nil, now))

	user, err := repo.Create(context.Background(), "Jan", "jan@example.com", "hash", KindMember)
	require.NoError(t, err)
	require.Equal(t, 1, user.ID)
	require.Equal(t, KindMember, user.Kind)
	require.Nil(t, user.PaymentMethodRef)
}

func TestFindByID(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	now := time.Now()
	expiry := now.AddDate(1, 0, 0)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, name, email, password_hash, kind, payment_method_ref, payment_method_expiry, created_at
		FROM users
		WHERE id = $1
	`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(7, "Anna", "anna@example.com", "hash", "trainer", "pm_xyz", expiry, now))

	user, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, KindTrainer, user.Kind)
	require.NotNil(t, user.PaymentMethodRef)
	require.Equal(t, "pm_xyz", *user.PaymentMethodRef)
}

func TestEmailExists(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`)).
		WithArgs("jan@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "jan@example.com")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestSavePaymentMethod(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	expiry := time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE users
		SET payment_method_ref = $1, payment_method_expiry = $2
		WHERE id = $3
	`)).
		WithArgs("pm_abc", expiry, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SavePaymentMethod(context.Background(), 1, "pm_abc", expiry)
	require.NoError(t, err)
}

func TestSavePaymentMethodUnknownUser(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE users
		SET payment_method_ref = $1, payment_method_expiry = $2
		WHERE id = $3
	`)).
		WithArgs("pm_abc", sqlmock.AnyArg(), 999).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SavePaymentMethod(context.Background(), 999, "pm_abc", time.Now())
	require.ErrorIs(t, err, ErrUserNotFound)
}
