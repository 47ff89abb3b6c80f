package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/kahvekart/kahve-kart/internal/errs"
	"github.com/kahvekart/kahve-kart/internal/model"
	"github.com/kahvekart/kahve-kart/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	Role          string `json:"role"`
	CafeName      string `json:"cafeName,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        userResponse `json:"user"`
}

type couponResponse struct {
	ID        string    `json:"id"`
	CafeName  string    `json:"cafeName"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type balanceResponse struct {
	CafeName  string `json:"cafeName"`
	Count     int    `json:"count"`
	Threshold int    `json:"threshold"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:            u.ID.String(),
		Email:         u.Email,
		Name:          u.Name,
		Surname:       u.Surname,
		Role:          u.Role,
		CafeName:      u.CafeName,
		EmailVerified: u.EmailVerified,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.auth.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Surname:  req.Surname,
	})
	if err != nil {
		s.writeError(w, "register", err)
		return
	}
	s.respond(w, http.StatusCreated, map[string]string{"userId": id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}
	tokens, u, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, "login", err)
		return
	}
	s.respond(w, http.StatusOK, loginResponse{
		AccessToken: tokens.AccessToken,
		ExpiresAt:   tokens.ExpiresAt,
		User:        toUserResponse(u),
	})
}

func (s *Server) handleConfirmVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.auth.ConfirmVerification(r.Context(), req.Token); err != nil {
		s.writeError(w, "confirm verification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckVerification(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	verified, err := s.auth.CheckVerification(r.Context(), id.ID)
	if err != nil {
		s.writeError(w, "check verification", err)
		return
	}
	s.respond(w, http.StatusOK, map[string]bool{"verified": verified})
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	if err := s.auth.ResendVerification(r.Context(), id.ID); err != nil {
		s.writeError(w, "resend verification", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleMyStamps(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	cafe := strings.TrimSpace(r.URL.Query().Get("cafe"))
	if cafe == "" {
		http.Error(w, "missing cafe parameter", http.StatusBadRequest)
		return
	}
	b, err := s.stamps.Balance(r.Context(), id.ID, cafe)
	if err != nil {
		s.writeError(w, "balance", err)
		return
	}
	s.respond(w, http.StatusOK, balanceResponse{
		CafeName:  b.CafeName,
		Count:     b.Count,
		Threshold: model.GiftThreshold,
	})
}

func (s *Server) handleMyCoupons(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	coupons, err := s.coupons.ListForUser(r.Context(), id.ID)
	if err != nil {
		s.writeError(w, "list coupons", err)
		return
	}
	out := make([]couponResponse, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, couponResponse{
			ID:        c.ID.String(),
			CafeName:  c.CafeName,
			CreatedAt: c.CreatedAt,
			ExpiresAt: c.ExpiresAt,
		})
	}
	s.respond(w, http.StatusOK, out)
}

// handleScan runs one scan transaction. Accepted and rejected scans are both
// HTTP 200 with the outcome in the body; only backend failures are 5xx.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	var req struct {
		Payload string `json:"payload"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	op := model.Operator{ID: id.ID, CafeName: id.Cafe}
	out := s.scan.HandleScan(r.Context(), op, req.Payload)
	status := http.StatusOK
	if out.Status == model.ScanError {
		status = http.StatusInternalServerError
	}
	s.respond(w, status, out)
}

func (s *Server) handleAddAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Surname  string `json:"surname"`
		CafeName string `json:"cafeName"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.admins.AddAdmin(r.Context(), service.AddAdminInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Surname:  req.Surname,
		CafeName: req.CafeName,
	})
	if err != nil {
		s.writeError(w, "add admin", err)
		return
	}
	s.respond(w, http.StatusCreated, map[string]string{"userId": id})
}

func (s *Server) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := s.admins.ListAdmins(r.Context())
	if err != nil {
		s.writeError(w, "list admins", err)
		return
	}
	out := make([]userResponse, 0, len(admins))
	for _, u := range admins {
		out = append(out, toUserResponse(u))
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) handleRemoveAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	if err := s.admins.RemoveAdmin(r.Context(), id); err != nil {
		s.writeError(w, "remove admin", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads the JSON body into dst, answering 400 on malformed input.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

// writeError maps service sentinels to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidFormat):
		http.Error(w, "invalid input", http.StatusBadRequest)
	case errors.Is(err, errs.ErrUnauthorized):
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	case errors.Is(err, errs.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, errs.ErrAlreadyExists):
		http.Error(w, "already exists", http.StatusConflict)
	default:
		s.log.Error(op, zap.Error(err))
		http.Error(w, "internal", http.StatusInternalServerError)
	}
}
