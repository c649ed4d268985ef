package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"upilens/internal/core"
	"upilens/internal/insights"
	"upilens/internal/log"
)

// transactionDTO is the JSON shape of a transaction. Amounts travel as
// fixed two-decimal strings.
type transactionDTO struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Time         string `json:"time,omitempty"`
	Amount       string `json:"amount"`
	Direction    string `json:"direction"`
	Counterparty string `json:"counterparty"`
	Category     string `json:"category"`
	UPIRef       string `json:"upi_ref,omitempty"`
	TimeOfDay    string `json:"time_of_day,omitempty"`
	AmountBand   string `json:"amount_band"`
}

func toTransactionDTO(tx core.Transaction) transactionDTO {
	return transactionDTO{
		ID:           tx.ID,
		Date:         tx.Date.String(),
		Time:         tx.Time,
		Amount:       tx.Amount.StringFixed(2),
		Direction:    string(tx.Direction),
		Counterparty: tx.Counterparty,
		Category:     tx.Category,
		UPIRef:       tx.UPIRef,
		TimeOfDay:    insights.TimeOfDay(tx.Time),
		AmountBand:   insights.AmountBand(tx.Amount),
	}
}

type documentDTO struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Status      string `json:"status"`
	TxCount     int    `json:"tx_count"`
	Error       string `json:"error,omitempty"`
	UploadedAt  string `json:"uploaded_at"`
	ProcessedAt string `json:"processed_at,omitempty"`
}

func toDocumentDTO(doc core.Document) documentDTO {
	d := documentDTO{
		ID:         doc.ID,
		Filename:   doc.Filename,
		Status:     string(doc.Status),
		TxCount:    doc.TxCount,
		Error:      doc.ErrorMessage,
		UploadedAt: doc.UploadedAt.Format(time.RFC3339),
	}
	if doc.ProcessedAt != nil {
		d.ProcessedAt = doc.ProcessedAt.Format(time.RFC3339)
	}
	return d
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	docs, err := s.store.ListDocuments(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list documents failed", log.FieldError, err)
		http.Error(w, "failed to load documents", http.StatusInternalServerError)
		return
	}
	txs, err := s.listTransactions(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list transactions failed", log.FieldError, err)
		http.Error(w, "failed to load transactions", http.StatusInternalServerError)
		return
	}

	categories := make([]categorySummaryDTO, 0)
	for _, c := range insights.ByCategory(txs) {
		categories = append(categories, toCategoryDTO(c))
	}
	recent := txs
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	recentDTOs := make([]transactionDTO, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		recentDTOs = append(recentDTOs, toTransactionDTO(recent[i]))
	}
	docDTOs := make([]documentDTO, 0, len(docs))
	for _, doc := range docs {
		docDTOs = append(docDTOs, toDocumentDTO(doc))
	}

	data := struct {
		Documents  []documentDTO
		Recent     []transactionDTO
		Categories []categorySummaryDTO
		TxCount    int
	}{
		Documents:  docDTOs,
		Recent:     recentDTOs,
		Categories: categories,
		TxCount:    len(txs),
	}

	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "render dashboard failed", log.FieldError, err)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		return
	}

	file, header, err := r.FormFile("statement")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing statement file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	doc, txs, err := s.ingest.Ingest(r.Context(), header.Filename, data)
	if err != nil {
		var dup *core.DuplicateDocumentError
		switch {
		case errors.As(err, &dup):
			writeError(w, http.StatusConflict, "statement already uploaded: "+dup.Filename)
		default:
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}

	s.invalidateCaches()

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, struct {
			Document documentDTO `json:"document"`
			TxCount  int         `json:"tx_count"`
		}{toDocumentDTO(doc), len(txs)})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	docs, err := s.store.ListDocuments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load documents")
		return
	}
	out := make([]documentDTO, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentDTO(doc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
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
	out := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

// filterTransactions applies the optional category and month (YYYY-MM)
// query filters.
func filterTransactions(txs []core.Transaction, category, month string) []core.Transaction {
	if category == "" && month == "" {
		return txs
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if category != "" && tx.Category != category {
			continue
		}
		if month != "" && tx.Date.MonthKey() != month {
			continue
		}
		out = append(out, tx)
	}
	return out
}
