package webhook_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nocodeinfolab/ledgersync/internal/history"
	"github.com/nocodeinfolab/ledgersync/internal/http/webhook"
	"github.com/nocodeinfolab/ledgersync/internal/ledger"
	"github.com/nocodeinfolab/ledgersync/internal/reconcile"
)

func newServer(t *testing.T, m *reconcile.MockLedger, repo history.Repository) http.Handler {
	t.Helper()

	h := webhook.NewHandler(reconcile.NewService(m), history.NewService(repo))

	router := chi.NewRouter()
	router.Route("/webhook", func(r chi.Router) {
		h.Routes(r)
	})

	return router
}

func post(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	return body
}

func TestHandler_Receive_CreatesInvoice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := reconcile.NewMockLedger(ctrl)
	m.EXPECT().FindInvoiceByReference(gomock.Any(), "TX-100").Return(nil, false, nil)
	m.EXPECT().FindOrCreateCustomer(gomock.Any(), "Jane Doe").Return("cust-1", nil)
	m.EXPECT().
		CreateInvoice(gomock.Any(), gomock.Any()).
		Return(&ledger.Invoice{InvoiceID: "inv-1", CustomerID: "cust-1", Balance: 100000}, nil)
	m.EXPECT().
		CreatePayment(gomock.Any(), gomock.Any(), int64(120000), "cash").
		Return(&ledger.Payment{PaymentID: "pay-1"}, nil)
	m.EXPECT().
		CreateCreditNote(gomock.Any(), "cust-1", int64(20000), gomock.Any()).
		Return(&ledger.CreditNote{CreditNoteID: "cn-1"}, nil)

	srv := newServer(t, m, history.Disabled())

	rec := post(t, srv, `{
		"Transaction ID": "TX-100",
		"Patient Name": "Jane Doe",
		"Services": ["Consultation"],
		"Prices": [1000],
		"Payable Amount": 1000,
		"Total Amount Paid": 1200
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "invoice created", decodeMessage(t, rec)["message"])
}

func TestHandler_Receive_UnchangedReplay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	existing := &ledger.Invoice{
		InvoiceID:       "inv-1",
		CustomerID:      "cust-1",
		ReferenceNumber: "TX-200",
		LineItems:       []ledger.LineItem{{Name: "Consultation", Rate: 50000}},
		Total:           50000,
	}

	m := reconcile.NewMockLedger(ctrl)
	m.EXPECT().FindInvoiceByReference(gomock.Any(), "TX-200").Return(existing, true, nil)

	srv := newServer(t, m, history.Disabled())

	rec := post(t, srv, `{
		"Transaction ID": "TX-200",
		"Patient Name": "Jane Doe",
		"Services": ["Consultation"],
		"Prices": [500],
		"Payable Amount": 500
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeMessage(t, rec)["message"], "already matches")
}

func TestHandler_Receive_InvalidPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No ledger calls may happen for a rejected payload.
	m := reconcile.NewMockLedger(ctrl)

	srv := newServer(t, m, history.Disabled())

	rec := post(t, srv, `{"Patient Name": "Jane Doe"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeMessage(t, rec)
	assert.Equal(t, "invalid webhook payload", body["message"])
	assert.Contains(t, body["error"], "Transaction ID")
}

func TestHandler_Receive_LedgerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := reconcile.NewMockLedger(ctrl)
	m.EXPECT().
		FindInvoiceByReference(gomock.Any(), "TX-300").
		Return(nil, false, errors.New("ledger unreachable"))

	srv := newServer(t, m, history.Disabled())

	rec := post(t, srv, `{
		"Transaction ID": "TX-300",
		"Patient Name": "Jane Doe",
		"Services": ["Consultation"],
		"Prices": [500],
		"Payable Amount": 500
	}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeMessage(t, rec)
	assert.Equal(t, "reconciliation failed", body["message"])
	assert.Contains(t, body["error"], "ledger unreachable")
}
