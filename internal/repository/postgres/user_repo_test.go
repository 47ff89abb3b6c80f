package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/kahvekart/kahve-kart/internal/errs"
	"github.com/kahvekart/kahve-kart/internal/model"
)

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	ctx := context.Background()
	u := &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Email:    "a@b.c",
		Name:     "Ayşe",
		Surname:  "Demir",
		Role:     model.RoleUser,
		PwdHash:  []byte{1},
		SaltAuth: []byte{2},
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.Name, u.Surname, u.Role, "", u.PwdHash, u.SaltAuth, false, "tok").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := r.Create(ctx, u, "tok")
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestUserRepo_GetByEmail_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email=\$1`).
		WithArgs("a@b.c").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "name", "surname", "role", "cafe_name",
			"pwd_hash", "salt_auth", "email_verified", "created_at",
		}).AddRow(id, "a@b.c", "Ayşe", "Demir", model.RoleAdmin, "CafeA",
			[]byte{1}, []byte{2}, true, time.Now()))

	u, err := r.GetByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, model.RoleAdmin, u.Role)
	require.Equal(t, "CafeA", u.CafeName)
	require.Equal(t, "Ayşe Demir", u.DisplayName())
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(errs.ErrNotFound)

	_, err := r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_MarkVerifiedByToken_Unknown(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	mock.ExpectExec(`UPDATE users SET email_verified=true`).
		WithArgs("tok").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := r.MarkVerifiedByToken(context.Background(), "tok")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_SetRole_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	id := uuid.Must(uuid.NewV4())
	mock.ExpectExec(`UPDATE users SET role=\$2`).
		WithArgs(id, model.RoleAdmin, "CafeA").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, r.SetRole(context.Background(), id, model.RoleAdmin, "CafeA"))
}

func TestUserRepo_Delete_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	id := uuid.Must(uuid.NewV4())
	mock.ExpectExec(`DELETE FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := r.Delete(context.Background(), id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
