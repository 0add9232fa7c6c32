// Package server binds the ledger services to a JSON HTTP boundary.
//
// The boundary is deliberately thin: it decodes input, resolves the caller
// from the request identity, calls one service operation and encodes the
// result. All validation and ledger semantics live in the services.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/udhaar-app/udhaar/internal/auth"
	"github.com/udhaar-app/udhaar/internal/middleware"
	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/service"
	"github.com/udhaar-app/udhaar/internal/storage"
)

// Server holds the services the HTTP boundary dispatches to.
type Server struct {
	expenses    *service.ExpenseService
	settlements *service.SettlementService
	conversions *service.ConversionService
	groups      *service.GroupService
	netting     *service.NettingService
	otp         *auth.OTPService
	store       storage.Store
}

// New creates a Server.
func New(
	expenses *service.ExpenseService,
	settlements *service.SettlementService,
	conversions *service.ConversionService,
	groups *service.GroupService,
	netting *service.NettingService,
	otp *auth.OTPService,
	store storage.Store,
) *Server {
	return &Server{
		expenses:    expenses,
		settlements: settlements,
		conversions: conversions,
		groups:      groups,
		netting:     netting,
		otp:         otp,
		store:       store,
	}
}

// RegisterRoutes attaches all handlers to the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"ping": "pong"})
	})

	mux.HandleFunc("POST /auth/otp", s.handleIssueOTP)
	mux.HandleFunc("POST /auth/verify", s.handleVerifyOTP)
	mux.HandleFunc("POST /auth/signup", s.handleSignup)

	mux.HandleFunc("POST /groups", s.handleCreateGroup)
	mux.HandleFunc("GET /groups", s.handleListGroups)
	mux.HandleFunc("GET /groups/{id}", s.handleGetGroup)
	mux.HandleFunc("POST /groups/{id}/members", s.handleAddMember)
	mux.HandleFunc("GET /groups/{id}/balances", s.handleGroupBalances)
	mux.HandleFunc("GET /groups/{id}/totals", s.handleGroupTotals)
	mux.HandleFunc("GET /groups/{id}/expenses", s.handleListExpenses)

	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /expenses/{id}/splits", s.handleExpenseSplits)

	mux.HandleFunc("POST /settlements/group", s.handleSettleInGroup)
	mux.HandleFunc("POST /settlements/auto", s.handleAutoSettle)
	mux.HandleFunc("POST /conversions", s.handleConvert)

	mux.HandleFunc("GET /balances/{userID}", s.handleOwedBetween)
	mux.HandleFunc("POST /balances/{userID}/simplify", s.handleSimplify)

	mux.HandleFunc("GET /me", s.handleMe)
	mux.HandleFunc("PUT /me/notification-token", s.handleSetNotificationToken)

	mux.HandleFunc("GET /currencies", s.handleListCurrencies)
	mux.HandleFunc("PUT /currencies/{id}", s.handleUpsertCurrency)
}

func (s *Server) handleIssueOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Contact string `json:"contact"`
	}
	if !decode(w, r, &req) {
		return
	}
	// Delivery (SMS/email) is an external concern; the code never leaves
	// the process through this response.
	if _, err := s.otp.Issue(r.Context(), req.Contact); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Contact string `json:"contact"`
		Code    string `json:"code"`
	}
	if !decode(w, r, &req) {
		return
	}
	token, identity, err := s.otp.Verify(r.Context(), req.Contact, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"signed_up": identity.Kind == auth.Authenticated,
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	identity := middleware.GetIdentity(r.Context())
	token, user, err := s.otp.CompleteSignup(r.Context(), identity, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	group, err := s.groups.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	groups, err := s.groups.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	group, err := s.groups.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Phone string `json:"phone"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.groups.AddMemberByPhone(r.Context(), user.ID, r.PathValue("id"), req.Phone); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGroupBalances(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	balances, err := s.groups.MemberBalances(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (s *Server) handleGroupTotals(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if _, err := s.groups.Get(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	totals, err := s.store.OwedInGroupTotal(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if _, err := s.groups.Get(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	expenses, err := s.expenses.ListByGroup(r.Context(), r.PathValue("id"), 10, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Title      string `json:"title"`
		Category   string `json:"category"`
		Note       string `json:"note"`
		ImageID    string `json:"image_id"`
		Amount     int64  `json:"amount"`
		CurrencyID string `json:"currency_id"`
		GroupID    string `json:"group_id"`
		Shares     []struct {
			UserID string `json:"user_id"`
			Amount int64  `json:"amount"`
		} `json:"shares"`
	}
	if !decode(w, r, &req) {
		return
	}

	in := service.ExpenseInput{
		Title:      req.Title,
		Category:   req.Category,
		Note:       req.Note,
		ImageID:    req.ImageID,
		Amount:     req.Amount,
		CurrencyID: req.CurrencyID,
		GroupID:    req.GroupID,
	}
	for _, share := range req.Shares {
		in.Shares = append(in.Shares, service.Share{UserID: share.UserID, Amount: share.Amount})
	}

	expense, err := s.expenses.Create(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleExpenseSplits(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	splits, err := s.expenses.Splits(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, splits)
}

func (s *Server) handleSettleInGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		PayeeID    string `json:"payee_id"`
		GroupID    string `json:"group_id"`
		Amount     int64  `json:"amount"`
		CurrencyID string `json:"currency_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	leg, err := s.settlements.SettleInGroup(r.Context(), user.ID, req.PayeeID, req.GroupID, req.Amount, req.CurrencyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, leg)
}

func (s *Server) handleAutoSettle(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		PayeeID    string `json:"payee_id"`
		Amount     int64  `json:"amount"`
		CurrencyID string `json:"currency_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	legs, err := s.settlements.AutoSettle(r.Context(), user.ID, req.PayeeID, req.Amount, req.CurrencyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, legs)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		WithUserID     string `json:"with_user_id"`
		GroupID        string `json:"group_id"`
		FromCurrencyID string `json:"from_currency_id"`
		ToCurrencyID   string `json:"to_currency_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	legs, err := s.conversions.Convert(r.Context(), user.ID, req.WithUserID, req.GroupID, req.FromCurrencyID, req.ToCurrencyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, legs)
}

func (s *Server) handleOwedBetween(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	balances, err := s.store.OwedBetween(r.Context(), user.ID, r.PathValue("userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (s *Server) handleSimplify(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	legs, err := s.netting.Simplify(r.Context(), user.ID, r.PathValue("userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, legs)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleSetNotificationToken(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.store.SetNotificationToken(r.Context(), user.ID, req.Token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := s.store.ListCurrencies(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, currencies)
}

func (s *Server) handleUpsertCurrency(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	var req struct {
		DisplayName string  `json:"display_name"`
		Symbol      string  `json:"symbol"`
		Rate        float64 `json:"rate"`
		Decimals    int64   `json:"decimals"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Rate <= 0 || req.Decimals < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid currency definition"})
		return
	}
	currency := &models.Currency{
		ID:          r.PathValue("id"),
		DisplayName: req.DisplayName,
		Symbol:      req.Symbol,
		Rate:        req.Rate,
		Decimals:    req.Decimals,
	}
	if err := s.store.UpsertCurrency(r.Context(), currency); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, currency)
}

// requireUser resolves the authenticated user or writes 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.GetIdentity(r.Context()).AuthenticatedUser()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return nil, false
	}
	return user, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrSelfSplit),
		errors.Is(err, service.ErrNotAGroupMember),
		errors.Is(err, service.ErrSameUser):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidOTP),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
