package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/blockedge-co/gash-miniapp/observability/logging"
	"github.com/blockedge-co/gash-miniapp/swap"
)

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

type swapRequest struct {
	UserID        string  `json:"userId"`
	AmountWLD     float64 `json:"amountWLD"`
	BonusEligible bool    `json:"bonusEligible"`
}

func writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Success: false, Error: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: map[string]string{"status": "ok"}})
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	rate, err := s.rates.Current(r.Context())
	if err != nil {
		s.logger.Error("rate lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch conversion rate")
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: rate, Message: "Rate fetched successfully"})
}

// handleRateHead warms the rate cache and reports availability without a body.
func (s *Server) handleRateHead(w http.ResponseWriter, r *http.Request) {
	if _, err := s.rates.Current(r.Context()); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request parameters")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || req.AmountWLD <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid request parameters")
		return
	}

	receipt, err := s.engine.Execute(r.Context(), swap.Intent{
		UserID:        req.UserID,
		AmountWLD:     req.AmountWLD,
		BonusEligible: req.BonusEligible,
	})
	if err != nil {
		var vErr *swap.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, http.StatusBadRequest, strings.Join(vErr.Errors, "; "))
		case errors.Is(err, swap.ErrSwapLimitExceeded):
			writeError(w, http.StatusTooManyRequests, "Daily swap limit exceeded (5 swaps per day)")
		case errors.Is(err, swap.ErrUserNotFound):
			writeError(w, http.StatusBadRequest, "User not found")
		default:
			s.logger.Error("swap failed", "user", logging.MaskUserID(req.UserID), "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if _, err := s.directory.ApplySwap(req.UserID, req.AmountWLD, receipt.GashReceived); err != nil {
		s.logger.Error("balance update failed", "user", logging.MaskUserID(req.UserID), "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data:    receipt,
		Message: "Swap completed successfully",
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	txs := s.ledger.List(userID)
	if txs == nil {
		txs = []swap.Transaction{}
	}
	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data:    txs,
		Message: "Transactions retrieved successfully",
	})
}
