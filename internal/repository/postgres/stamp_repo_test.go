package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/kahvekart/kahve-kart/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

// The increment must be one conditional upsert carrying only the row key:
// the new count is computed inside the statement, never read first and
// written back, so concurrent grants for the same (user, cafe) cannot both
// start from the same observed count.
const incPattern = `(?s)INSERT INTO stamp_balances.*ON CONFLICT \(user_id, cafe_name\).*DO UPDATE SET count = stamp_balances\.count \+ 1.*RETURNING count`

func TestStampRepo_AddStamp_BelowThreshold(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStampRepo(db)

	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(incPattern).
		WithArgs(userID, "CafeA").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectCommit()

	res, err := r.AddStamp(ctx, userID, "CafeA")
	require.NoError(t, err)
	require.Equal(t, 3, res.NewCount)
	require.False(t, res.GiftIssued)
	require.Nil(t, res.Coupon)
}

func TestStampRepo_AddStamp_FirstStampIsSameStatement(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStampRepo(db)

	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	// An absent balance takes the same single statement as an existing one;
	// there is no separate read that two first scans could both pass.
	mock.ExpectBegin()
	mock.ExpectQuery(incPattern).
		WithArgs(userID, "CafeA").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	res, err := r.AddStamp(ctx, userID, "CafeA")
	require.NoError(t, err)
	require.Equal(t, 1, res.NewCount)
	require.False(t, res.GiftIssued)
}

func TestStampRepo_AddStamp_FullCardIssuesCoupon(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStampRepo(db)

	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(incPattern).
		WithArgs(userID, "CafeA").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectExec(`INSERT INTO coupons`).
		WithArgs(pgxmock.AnyArg(), userID, "CafeA", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE stamp_balances SET count=0, has_pending_gift=true`).
		WithArgs(userID, "CafeA").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	res, err := r.AddStamp(ctx, userID, "CafeA")
	require.NoError(t, err)
	require.Equal(t, 0, res.NewCount)
	require.True(t, res.GiftIssued)
	require.NotNil(t, res.Coupon)
	require.Equal(t, userID, res.Coupon.UserID)
	require.Equal(t, "CafeA", res.Coupon.CafeName)
	require.WithinDuration(t, time.Now().UTC().Add(model.CouponTTL), res.Coupon.ExpiresAt, 5*time.Second)
}

func TestStampRepo_AddStamp_RollsBackOnWriteError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStampRepo(db)

	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(incPattern).
		WithArgs(userID, "CafeA").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectExec(`INSERT INTO coupons`).
		WithArgs(pgxmock.AnyArg(), userID, "CafeA", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	_, err := r.AddStamp(ctx, userID, "CafeA")
	require.Error(t, err)
}

func TestStampRepo_GetBalance_MissingRowReadsZero(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStampRepo(db)

	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT count, has_pending_gift, updated_at`).
		WithArgs(userID, "CafeA").
		WillReturnError(pgx.ErrNoRows)

	b, err := r.GetBalance(ctx, userID, "CafeA")
	require.NoError(t, err)
	require.Equal(t, 0, b.Count)
	require.False(t, b.HasPendingGift)
}
