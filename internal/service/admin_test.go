package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/kahvekart/kahve-kart/internal/errs"
	"github.com/kahvekart/kahve-kart/internal/model"
)

func validAddAdmin() AddAdminInput {
	return AddAdminInput{
		Email:    "patron@cafea.com",
		Password: "sifre12345",
		Name:     "Mehmet",
		Surname:  "Kaya",
		CafeName: "CafeA",
	}
}

func TestAddAdmin_CreatesVerifiedAdmin(t *testing.T) {
	t.Parallel()
	users := newFakeUserRepo()
	svc := NewAdminService(users)

	id, err := svc.AddAdmin(context.Background(), validAddAdmin())
	if err != nil {
		t.Fatalf("add admin: %v", err)
	}
	u := users.byID[uuid.FromStringOrNil(id)]
	if u == nil {
		t.Fatalf("admin not stored")
	}
	if u.Role != model.RoleAdmin || u.CafeName != "CafeA" || !u.EmailVerified {
		t.Fatalf("admin state: %+v", u)
	}
	if len(users.tokens) != 0 {
		t.Fatalf("vouched account must not get a verification token")
	}
}

func TestAddAdmin_PromotesExistingAccount(t *testing.T) {
	t.Parallel()
	users := newFakeUserRepo()
	auth := NewAuthService(users, &fakeMailer{}, []byte("k"), 0)
	svc := NewAdminService(users)
	ctx := context.Background()

	in := validRegister()
	in.Email = "patron@cafea.com"
	id, err := auth.Register(ctx, in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	add := validAddAdmin()
	add.Password = in.Password
	gotID, err := svc.AddAdmin(ctx, add)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if gotID != id {
		t.Fatalf("promotion must reuse the account: got %s want %s", gotID, id)
	}
	u := users.byID[uuid.FromStringOrNil(id)]
	if u.Role != model.RoleAdmin || u.CafeName != "CafeA" {
		t.Fatalf("after promotion: %+v", u)
	}
}

func TestAddAdmin_WrongPasswordOnExisting(t *testing.T) {
	t.Parallel()
	users := newFakeUserRepo()
	auth := NewAuthService(users, &fakeMailer{}, []byte("k"), 0)
	svc := NewAdminService(users)
	ctx := context.Background()

	in := validRegister()
	in.Email = "patron@cafea.com"
	id, err := auth.Register(ctx, in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	add := validAddAdmin()
	add.Password = "baskasifre"
	if _, err := svc.AddAdmin(ctx, add); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("wrong password: got %v", err)
	}
	if u := users.byID[uuid.FromStringOrNil(id)]; u.Role != model.RoleUser {
		t.Fatalf("account must not be promoted: %+v", u)
	}
}

func TestAddAdmin_Validation(t *testing.T) {
	t.Parallel()
	svc := NewAdminService(newFakeUserRepo())

	cases := map[string]func(*AddAdminInput){
		"empty email":    func(in *AddAdminInput) { in.Email = " " },
		"empty cafe":     func(in *AddAdminInput) { in.CafeName = "" },
		"short password": func(in *AddAdminInput) { in.Password = "kisa" },
	}
	for name, mutate := range cases {
		in := validAddAdmin()
		mutate(&in)
		if _, err := svc.AddAdmin(context.Background(), in); !errors.Is(err, errs.ErrInvalidFormat) {
			t.Fatalf("%s: got %v, want ErrInvalidFormat", name, err)
		}
	}
}

func TestListAdmins_OnlyAdmins(t *testing.T) {
	t.Parallel()
	users := newFakeUserRepo()
	auth := NewAuthService(users, &fakeMailer{}, []byte("k"), 0)
	svc := NewAdminService(users)
	ctx := context.Background()

	if _, err := auth.Register(ctx, validRegister()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.AddAdmin(ctx, validAddAdmin()); err != nil {
		t.Fatalf("add admin: %v", err)
	}

	admins, err := svc.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(admins) != 1 || admins[0].Email != "patron@cafea.com" {
		t.Fatalf("admins: %+v", admins)
	}
}

func TestRemoveAdmin(t *testing.T) {
	t.Parallel()
	users := newFakeUserRepo()
	svc := NewAdminService(users)
	ctx := context.Background()

	id, err := svc.AddAdmin(ctx, validAddAdmin())
	if err != nil {
		t.Fatalf("add admin: %v", err)
	}
	uid := uuid.FromStringOrNil(id)

	if err := svc.RemoveAdmin(ctx, uid); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(users.byID) != 0 {
		t.Fatalf("account must be gone")
	}
	if err := svc.RemoveAdmin(ctx, uid); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second remove: got %v", err)
	}
	if err := svc.RemoveAdmin(ctx, uuid.Nil); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("nil id: got %v", err)
	}
}
