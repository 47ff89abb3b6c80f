package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/kahvekart/kahve-kart/internal/model"
	"github.com/kahvekart/kahve-kart/internal/service"
)

func TestIdentityCtxRoundTrip(t *testing.T) {
	t.Parallel()

	id := Identity{ID: uuid.Must(uuid.NewV4()), Role: model.RoleAdmin, Cafe: "CafeA"}
	ctx := WithIdentity(context.Background(), id)

	got, ok := IdentityFromCtx(ctx)
	if !ok || got != id {
		t.Fatalf("roundtrip: %+v ok=%v", got, ok)
	}
	if _, ok := IdentityFromCtx(context.Background()); ok {
		t.Fatalf("empty context must carry no identity")
	}
}

func TestRecover_TurnsPanicInto500(t *testing.T) {
	t.Parallel()

	h := Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		got, err := bearerToken(r)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("header %q: got %q, %v", tc.header, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("header %q: want error", tc.header)
		}
	}
}

func TestAuthenticate_RejectsForeignSigningMethod(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := service.AccessClaims{
		Role: model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.Must(uuid.NewV4()).String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSignKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	h := Authenticate(testSignKey)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not run")
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d", rec.Code)
	}
}
