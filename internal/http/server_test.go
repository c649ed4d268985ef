package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"upilens/internal/categorize"
	"upilens/internal/log"
	"upilens/internal/memstore"
	"upilens/internal/rag"
	"upilens/internal/services"
)

const statementCSV = "date,direction,counterparty,amount\n" +
	"2024-01-05,debit,Swiggy Order,450.00\n" +
	"2024-01-06,credit,Rahul Kumar,1200\n"

type stubAnswerer struct {
	answer rag.Answer
	err    error
}

func (s *stubAnswerer) Ask(_ context.Context, _ string) (rag.Answer, error) {
	return s.answer, s.err
}

func newTestServer(t *testing.T, answerer Answerer) *Server {
	t.Helper()
	store := memstore.New()
	ingest := services.NewIngestService(store, categorize.NewDefault(), nil)
	srv := NewServer(Config{Addr: ":0", MaxUploadBytes: 1 << 20},
		store, ingest, answerer, log.New(log.DefaultConfig()))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func uploadRequest(t *testing.T, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("statement", "jan.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req
}

func doUpload(t *testing.T, srv *Server, content string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, uploadRequest(t, content))
	return rec
}

func TestUploadAndList(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doUpload(t, srv, statementCSV)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status: %d, body: %s", rec.Code, rec.Body)
	}
	var created struct {
		Document documentDTO `json:"document"`
		TxCount  int         `json:"tx_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.TxCount != 2 || created.Document.Status != "PARSED" {
		t.Fatalf("created: %+v", created)
	}

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status: %d", rec.Code)
	}
	var txs []transactionDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &txs); err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Category != "Food" || txs[0].Amount != "450.00" {
		t.Fatalf("first transaction: %+v", txs[0])
	}
}

func TestUploadRejectsDuplicate(t *testing.T) {
	srv := newTestServer(t, nil)

	if rec := doUpload(t, srv, statementCSV); rec.Code != http.StatusCreated {
		t.Fatalf("first upload: %d", rec.Code)
	}
	if rec := doUpload(t, srv, statementCSV); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate upload: %d", rec.Code)
	}
}

func TestUploadBadStatement(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doUpload(t, srv, "date,direction,counterparty,amount\nbad,debit,X,450\n")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Fatalf("body: %s", rec.Body)
	}
}

func TestUploadMissingFile(t *testing.T) {
	srv := newTestServer(t, nil)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestSummaryEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	doUpload(t, srv, statementCSV)

	for _, path := range []string{
		"/api/summary/daily",
		"/api/summary/monthly",
		"/api/summary/category",
		"/api/unusual",
		"/api/documents",
	} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("%s: content type %s", path, ct)
		}
	}
}

func TestCategorySummaryValues(t *testing.T) {
	srv := newTestServer(t, nil)
	doUpload(t, srv, statementCSV)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary/category", nil))
	var got []categorySummaryDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Category != "Food" || got[0].Total != "450.00" {
		t.Fatalf("summary: %+v", got)
	}
}

func TestTransactionFilters(t *testing.T) {
	srv := newTestServer(t, nil)
	doUpload(t, srv, statementCSV)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?category=Food", nil))
	var txs []transactionDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &txs); err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].Counterparty != "Swiggy Order" {
		t.Fatalf("filtered: %+v", txs)
	}

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?month=1999-01", nil))
	txs = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &txs); err != nil {
		t.Fatal(err)
	}
	if len(txs) != 0 {
		t.Fatalf("month filter: %+v", txs)
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t, nil)
	doUpload(t, srv, statementCSV)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type: %s", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "date,time,amount") {
		t.Fatalf("header: %s", lines[0])
	}
}

func TestAsk(t *testing.T) {
	srv := newTestServer(t, &stubAnswerer{
		answer: rag.Answer{Answer: "You spent ₹450.00 on food."},
	})

	body := strings.NewReader(`{"question":"how much on food?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ask", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body)
	}
	var got rag.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Answer != "You spent ₹450.00 on food." {
		t.Fatalf("answer: %q", got.Answer)
	}
}

func TestAskErrors(t *testing.T) {
	cases := []struct {
		name     string
		answerer Answerer
		body     string
		want     int
	}{
		{"not configured", nil, `{"question":"hi"}`, http.StatusServiceUnavailable},
		{"empty question", &stubAnswerer{}, `{"question":"  "}`, http.StatusBadRequest},
		{"bad json", &stubAnswerer{}, `{`, http.StatusBadRequest},
		{"index not ready", &stubAnswerer{err: rag.ErrIndexNotReady}, `{"question":"hi"}`, http.StatusConflict},
		{"too long", &stubAnswerer{}, `{"question":"` + strings.Repeat("a", 600) + `"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, tc.answerer)
			req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status: %d, body: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestDashboardRenders(t *testing.T) {
	srv := newTestServer(t, nil)
	doUpload(t, srv, statementCSV)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Swiggy Order", "Food", "jan.csv"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d", path, rec.Code)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/upload", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestUnknownPath(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: %d", rec.Code)
	}
}
