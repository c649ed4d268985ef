package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"upilens/internal/export"
	"upilens/internal/log"
	"upilens/internal/rag"
)

const maxQuestionLen = 500

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.answerer == nil {
		writeError(w, http.StatusServiceUnavailable, "question answering is not configured")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	question := sanitizeInput(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if len(question) > maxQuestionLen {
		writeError(w, http.StatusBadRequest, "question is too long")
		return
	}

	answer, err := s.answerer.Ask(r.Context(), question)
	if err != nil {
		switch {
		case errors.Is(err, rag.ErrEmptyQuestion):
			writeError(w, http.StatusBadRequest, "question is required")
		case errors.Is(err, rag.ErrIndexNotReady):
			writeError(w, http.StatusConflict, "no statements indexed yet, upload one first")
		default:
			s.logger.ErrorContext(r.Context(), "question failed",
				log.FieldQuestion, question, log.FieldError, err)
			writeError(w, http.StatusBadGateway, "failed to answer question")
		}
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
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
	txs = filterTransactions(txs, r.URL.Query().Get("category"), r.URL.Query().Get("month"))

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.Write(w, txs); err != nil {
		s.logger.ErrorContext(r.Context(), "csv export failed", log.FieldError, err)
	}
}
