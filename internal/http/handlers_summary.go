package http

import (
	"net/http"
	"strconv"

	"upilens/internal/core"
	"upilens/internal/insights"
)

type categorySummaryDTO struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Total    string `json:"total"`
	Average  string `json:"average"`
	Max      string `json:"max"`
}

type dailySummaryDTO struct {
	Date   string `json:"date"`
	Count  int    `json:"count"`
	Debit  string `json:"debit"`
	Credit string `json:"credit"`
	Net    string `json:"net"`
}

type monthlySummaryDTO struct {
	Month      string               `json:"month"`
	Count      int                  `json:"count"`
	Debit      string               `json:"debit"`
	Credit     string               `json:"credit"`
	Net        string               `json:"net"`
	ByCategory []categorySummaryDTO `json:"by_category"`
}

func toCategoryDTO(s core.CategorySummary) categorySummaryDTO {
	return categorySummaryDTO{
		Category: s.Category,
		Count:    s.Count,
		Total:    s.Total.StringFixed(2),
		Average:  s.Average.StringFixed(2),
		Max:      s.Max.StringFixed(2),
	}
}

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	txs, err := s.listTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	out := make([]dailySummaryDTO, 0)
	for _, d := range insights.Daily(txs) {
		out = append(out, dailySummaryDTO{
			Date:   d.Date.String(),
			Count:  d.Count,
			Debit:  d.Debit.StringFixed(2),
			Credit: d.Credit.StringFixed(2),
			Net:    d.Net.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	txs, err := s.listTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	out := make([]monthlySummaryDTO, 0)
	for _, m := range insights.Monthly(txs) {
		dto := monthlySummaryDTO{
			Month:      m.Month,
			Count:      m.Count,
			Debit:      m.Debit.StringFixed(2),
			Credit:     m.Credit.StringFixed(2),
			Net:        m.Net.StringFixed(2),
			ByCategory: make([]categorySummaryDTO, 0, len(m.ByCategory)),
		}
		for _, c := range m.ByCategory {
			dto.ByCategory = append(dto.ByCategory, toCategoryDTO(c))
		}
		out = append(out, dto)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	txs, err := s.listTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	if month := r.URL.Query().Get("month"); month != "" {
		txs = filterTransactions(txs, "", month)
	}
	out := make([]categorySummaryDTO, 0)
	for _, c := range insights.ByCategory(txs) {
		out = append(out, toCategoryDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUnusual(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	threshold := insights.DefaultUnusualThreshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || t <= 0 {
			writeError(w, http.StatusBadRequest, "threshold must be a positive number")
			return
		}
		threshold = t
	}

	txs, err := s.listTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	out := make([]transactionDTO, 0)
	for _, tx := range insights.Unusual(txs, threshold) {
		out = append(out, toTransactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, out)
}
