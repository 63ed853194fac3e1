// Package api exposes the launchpad over HTTP: JSON endpoints for sale
// creation, purchases, pricing, and sale lookup, plus a WebSocket feed
// of launchpad events. Amounts cross the wire as decimal strings.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/holiman/uint256"

	"github.com/ArjunMal1311/meme-coin/internal/analytics"
	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/events"
	"github.com/ArjunMal1311/meme-coin/internal/factory"
	"github.com/ArjunMal1311/meme-coin/internal/observability"
)

// Server routes HTTP traffic to the factory.
type Server struct {
	factory   *factory.Factory
	analytics *analytics.Aggregator // optional
	bus       *events.Bus           // optional, enables /ws
	metrics   *observability.Metrics
	logger    *log.Logger
}

// Options configures a Server. Factory is required.
type Options struct {
	Factory   *factory.Factory
	Analytics *analytics.Aggregator
	Bus       *events.Bus
	Metrics   *observability.Metrics
	Logger    *log.Logger
}

// NewServer creates an HTTP server facade over the factory.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[api] ", log.LstdFlags)
	}
	return &Server{
		factory:   opts.Factory,
		analytics: opts.Analytics,
		bus:       opts.Bus,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

// Routes returns the handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/factory", s.instrument("factory", s.handleFactoryInfo))
	mux.HandleFunc("/api/tokens", s.instrument("tokens", s.handleTokens))
	mux.HandleFunc("/api/buy", s.instrument("buy", s.handleBuy))
	mux.HandleFunc("/api/cost", s.instrument("cost", s.handleCost))
	mux.HandleFunc("/api/withdraw", s.instrument("withdraw", s.handleWithdraw))
	mux.HandleFunc("/api/stats", s.instrument("stats", s.handleStats))

	if s.bus != nil {
		mux.HandleFunc("/ws", s.handleWS)
	}

	return mux
}

// instrument wraps a handler with a request duration observation.
func (s *Server) instrument(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	if s.metrics == nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		s.metrics.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

// FactoryInfoResponse is the JSON body for GET /api/factory.
type FactoryInfoResponse struct {
	Fee         string `json:"fee"`
	Owner       string `json:"owner"`
	Account     string `json:"account"`
	TotalSupply string `json:"total_supply"`
	SaleCap     string `json:"sale_cap"`
	TotalTokens int    `json:"total_tokens"`
	FeeBalance  string `json:"fee_balance"`
}

func (s *Server) handleFactoryInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}

	total, err := s.factory.TotalTokens(r.Context())
	if err != nil {
		s.writeFactoryError(w, err)
		return
	}
	balance, err := s.factory.FeeBalance(r.Context())
	if err != nil {
		s.writeFactoryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FactoryInfoResponse{
		Fee:         domain.FormatAmount(s.factory.Fee()),
		Owner:       s.factory.Owner(),
		Account:     s.factory.Account(),
		TotalSupply: domain.FormatAmount(s.factory.TotalSupply()),
		SaleCap:     domain.FormatAmount(s.factory.SaleCap()),
		TotalTokens: total,
		FeeBalance:  domain.FormatAmount(balance),
	})
}

// CreateRequest is the JSON body for POST /api/tokens.
type CreateRequest struct {
	Creator string `json:"creator"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Payment string `json:"payment"`
}

// SaleResponse is the JSON view of a sale. Remaining and CurrentStep
// are derived from the registry state, not stored.
type SaleResponse struct {
	TokenID     string `json:"token_id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Creator     string `json:"creator"`
	Sold        string `json:"sold"`
	Raised      string `json:"raised"`
	Remaining   string `json:"remaining"`
	CurrentStep uint64 `json:"current_step"`
	IsOpen      bool   `json:"is_open"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *Server) saleResponse(sale *domain.Sale) SaleResponse {
	return SaleResponse{
		TokenID:     sale.TokenID,
		Name:        sale.Name,
		Symbol:      sale.Symbol,
		Creator:     sale.Creator,
		Sold:        domain.FormatAmount(sale.Sold),
		Raised:      domain.FormatAmount(sale.Raised),
		Remaining:   domain.FormatAmount(s.factory.Remaining(sale)),
		CurrentStep: s.factory.CurrentStep(sale),
		IsOpen:      sale.IsOpen,
		CreatedAt:   sale.CreatedAt,
	}
}

// handleTokens serves POST (create a sale), GET ?key= (single lookup by
// index or token id), and GET with optional paging (list).
func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreate(w, r)
	case http.MethodGet:
		if key := r.URL.Query().Get("key"); key != "" {
			s.handleLookup(w, r, key)
			return
		}
		s.handleList(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or POST only")
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	payment, err := parseAmountField(req.Payment, "payment")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sale, err := s.factory.Create(r.Context(), req.Creator, req.Name, req.Symbol, payment)
	if err != nil {
		s.writeFactoryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.saleResponse(sale))
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request, key string) {
	sale, err := s.factory.GetTokenSale(r.Context(), key)
	if err != nil {
		s.writeFactoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.saleResponse(sale))
}

// ListResponse is the JSON body for GET /api/tokens.
type ListResponse struct {
	Total  int            `json:"total"`
	Offset int            `json:"offset"`
	Sales  []SaleResponse `json:"sales"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	if offset < 0 || limit < 1 || limit > 500 {
		writeError(w, http.StatusBadRequest, "offset must be >= 0 and limit in 1..500")
		return
	}

	total, err := s.factory.TotalTokens(r.Context())
	if err != nil {
		s.writeFactoryError(w, err)
		return
	}

	sales := make([]SaleResponse, 0, limit)
	for i := offset; i < total && len(sales) < limit; i++ {
		sale, err := s.factory.GetSaleByIndex(r.Context(), i)
		if err != nil {
			s.writeFactoryError(w, err)
			return
		}
		sales = append(sales, s.saleResponse(sale))
	}

	writeJSON(w, http.StatusOK, ListResponse{Total: total, Offset: offset, Sales: sales})
}

// BuyRequest is the JSON body for POST /api/buy.
type BuyRequest struct {
	TokenID string `json:"token_id"`
	Buyer   string `json:"buyer"`
	Amount  string `json:"amount"`
	Payment string `json:"payment"`
}

// BuyResponse is the JSON view of a purchase receipt.
type BuyResponse struct {
	TokenID   string `json:"token_id"`
	Buyer     string `json:"buyer"`
	Amount    string `json:"amount"`
	Cost      string `json:"cost"`
	Refund    string `json:"refund"`
	NewSold   string `json:"new_sold"`
	NewRaised string `json:"new_raised"`
	Closed    bool   `json:"closed"`
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount, err := parseAmountField(req.Amount, "amount")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := parseAmountField(req.Payment, "payment")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := s.factory.Buy(r.Context(), req.TokenID, req.Buyer, amount, payment)
	if err != nil {
		s.writeFactoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BuyResponse{
		TokenID:   receipt.TokenID,
		Buyer:     receipt.Buyer,
		Amount:    domain.FormatAmount(receipt.Amount),
		Cost:      domain.FormatAmount(receipt.Cost),
		Refund:    domain.FormatAmount(receipt.Refund),
		NewSold:   domain.FormatAmount(receipt.NewSold),
		NewRaised: domain.FormatAmount(receipt.NewRaised),
		Closed:    receipt.Closed,
	})
}

// CostResponse is the JSON body for GET /api/cost.
type CostResponse struct {
	TokenID   string `json:"token_id"`
	Amount    string `json:"amount"`
	UnitPrice string `json:"unit_price"`
	Cost      string `json:"cost"`
}

func (s *Server) handleCost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}

	tokenID := r.URL.Query().Get("token")
	if tokenID == "" {
		writeError(w, http.StatusBadRequest, "token query parameter is required")
		return
	}
	amount, err := parseAmountField(r.URL.Query().Get("amount"), "amount")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	price, err := s.factory.UnitPrice(r.Context(), tokenID)
	if err != nil {
		s.writeFactoryError(w, err)
		return
	}
	cost, err := s.factory.GetCost(r.Context(), tokenID, amount)
	if err != nil {
		s.writeFactoryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CostResponse{
		TokenID:   tokenID,
		Amount:    domain.FormatAmount(amount),
		UnitPrice: domain.FormatAmount(price),
		Cost:      domain.FormatAmount(cost),
	})
}

// WithdrawRequest is the JSON body for POST /api/withdraw.
type WithdrawRequest struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount, err := parseAmountField(req.Amount, "amount")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.factory.WithdrawFees(r.Context(), req.Caller, amount); err != nil {
		s.writeFactoryError(w, err)
		return
	}

	balance, err := s.factory.FeeBalance(r.Context())
	if err != nil {
		s.writeFactoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"withdrawn":   domain.FormatAmount(amount),
		"fee_balance": domain.FormatAmount(balance),
	})
}

// StatsResponse is the JSON body for GET /api/stats.
type StatsResponse struct {
	TokenID      string `json:"token_id"`
	Purchases    int    `json:"purchases"`
	UniqueBuyers int    `json:"unique_buyers"`
	UnitsSold    string `json:"units_sold"`
	Raised       string `json:"raised"`
	AverageCost  string `json:"average_cost"`
	LargestBuy   string `json:"largest_buy"`
	Closed       bool   `json:"closed"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	if s.analytics == nil {
		writeError(w, http.StatusNotFound, "analytics not enabled")
		return
	}

	tokenID := r.URL.Query().Get("token")
	if tokenID == "" {
		writeError(w, http.StatusBadRequest, "token query parameter is required")
		return
	}

	stats, err := s.analytics.ComputeSaleStats(r.Context(), tokenID)
	if err != nil {
		if errors.Is(err, analytics.ErrNoPurchases) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Printf("compute stats for %s: %v", tokenID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TokenID:      stats.TokenID,
		Purchases:    stats.Purchases,
		UniqueBuyers: stats.UniqueBuyers,
		UnitsSold:    domain.FormatAmount(stats.UnitsSold),
		Raised:       domain.FormatAmount(stats.Raised),
		AverageCost:  domain.FormatAmount(stats.AverageCost),
		LargestBuy:   domain.FormatAmount(stats.LargestBuy),
		Closed:       stats.Closed,
	})
}

// writeFactoryError maps factory error taxonomy onto HTTP status codes.
func (s *Server) writeFactoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, factory.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, factory.ErrInvalidPayment):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, factory.ErrUnknownSale):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, factory.ErrSaleClosed), errors.Is(err, factory.ErrSupplyExceeded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, factory.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusRequestTimeout, "request cancelled")
	default:
		s.logger.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseAmountField(raw, field string) (*uint256.Int, error) {
	if raw == "" {
		return nil, errors.New(field + " is required")
	}
	v, err := domain.ParseAmount(raw)
	if err != nil {
		return nil, errors.New("invalid " + field + ": " + err.Error())
	}
	return v, nil
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}
