package service

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/kahvekart/kahve-kart/internal/model"
)

func TestStampService_AddStampValidation(t *testing.T) {
	t.Parallel()
	svc := NewStampService(&memStampRepo{counts: make(map[string]int), coupons: newMemCouponRepo()})
	ctx := context.Background()

	if _, err := svc.AddStamp(ctx, uuid.Nil, "CafeA"); err == nil {
		t.Fatalf("nil user must fail")
	}
	if _, err := svc.AddStamp(ctx, uuid.Must(uuid.NewV4()), "  "); err == nil {
		t.Fatalf("blank cafe must fail")
	}
}

func TestStampService_AddStampDelegates(t *testing.T) {
	t.Parallel()
	repo := &memStampRepo{counts: make(map[string]int), coupons: newMemCouponRepo()}
	svc := NewStampService(repo)
	ctx := context.Background()
	uid := uuid.Must(uuid.NewV4())

	res, err := svc.AddStamp(ctx, uid, "CafeA")
	if err != nil {
		t.Fatalf("add stamp: %v", err)
	}
	if res.NewCount != 1 || res.GiftIssued {
		t.Fatalf("result: %+v", res)
	}
}

func TestStampService_BalanceReadsZeroWhenAbsent(t *testing.T) {
	t.Parallel()
	svc := NewStampService(&memStampRepo{counts: make(map[string]int), coupons: newMemCouponRepo()})

	b, err := svc.Balance(context.Background(), uuid.Must(uuid.NewV4()), "CafeA")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if b.Count != 0 || b.Count >= model.GiftThreshold {
		t.Fatalf("fresh balance: %+v", b)
	}
}
