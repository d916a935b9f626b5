package ledger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nocodeinfolab/ledgersync/internal/ledger"
)

// newClient wires a client against the given fake ledger. The token is never
// rejected in these tests, so the auth URL is a dead end.
func newClient(srv *httptest.Server) *ledger.Client {
	g := ledger.NewGateway(ledger.GatewayConfig{
		AuthURL:     srv.URL + "/oauth/token",
		AccessToken: "test-token",
	})

	return ledger.NewClient(srv.URL, "org-42", g)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestClient_FindInvoiceByReference_ExactMatchOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "org-42", r.URL.Query().Get("organization_id"))

		switch r.URL.Path {
		case "/invoices":
			// The remote filter matches on substrings; TX-100 must not
			// pick up TX-1001.
			writeJSON(w, map[string]any{
				"invoices": []map[string]any{
					{"invoice_id": "inv-9", "reference_number": "TX-1001", "status": "sent"},
					{"invoice_id": "inv-7", "reference_number": "TX-100", "status": "void"},
					{"invoice_id": "inv-1", "reference_number": "TX-100", "status": "sent"},
				},
			})
		case "/invoices/inv-1":
			writeJSON(w, map[string]any{
				"invoice": map[string]any{
					"invoice_id":       "inv-1",
					"customer_id":      "cust-1",
					"reference_number": "TX-100",
					"status":           "sent",
					"line_items":       []map[string]any{{"name": "Consultation", "rate": 500.0}},
					"total":            500.0,
					"balance":          500.0,
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newClient(srv)

	inv, found, err := c.FindInvoiceByReference(context.Background(), "TX-100")

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "inv-1", inv.InvoiceID)
	assert.Equal(t, "TX-100", inv.ReferenceNumber)
	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, int64(50000), inv.LineItems[0].Rate)
	assert.Equal(t, int64(50000), inv.Balance)
}

func TestClient_FindInvoiceByReference_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"invoices": []any{}})
	}))
	defer srv.Close()

	c := newClient(srv)

	inv, found, err := c.FindInvoiceByReference(context.Background(), "TX-404")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, inv)
}

// A transport failure is an error, never silently "not found".
func TestClient_FindInvoiceByReference_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]any{"code": 500, "message": "internal error"})
	}))
	defer srv.Close()

	c := newClient(srv)

	_, found, err := c.FindInvoiceByReference(context.Background(), "TX-100")

	require.Error(t, err)
	assert.False(t, found)

	var apiErr *ledger.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestClient_FindOrCreateCustomer(t *testing.T) {
	t.Run("ExistingExactName", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/contacts", r.URL.Path)
			writeJSON(w, map[string]any{
				"contacts": []map[string]any{
					{"contact_id": "cust-2", "contact_name": "Jane Doe Clinic"},
					{"contact_id": "cust-1", "contact_name": "Jane Doe"},
				},
			})
		}))
		defer srv.Close()

		id, err := newClient(srv).FindOrCreateCustomer(context.Background(), "Jane Doe")

		require.NoError(t, err)
		assert.Equal(t, "cust-1", id)
	})

	t.Run("CreatesWhenMissing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				writeJSON(w, map[string]any{"contacts": []any{}})
				return
			}

			require.Equal(t, http.MethodPost, r.Method)

			var body struct {
				ContactName string `json:"contact_name"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "John Roe", body.ContactName)

			writeJSON(w, map[string]any{"contact": map[string]any{"contact_id": "cust-new"}})
		}))
		defer srv.Close()

		id, err := newClient(srv).FindOrCreateCustomer(context.Background(), "John Roe")

		require.NoError(t, err)
		assert.Equal(t, "cust-new", id)
	})
}

func TestClient_CreateInvoice_DiscountFields(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, map[string]any{
			"invoice": map[string]any{
				"invoice_id":  "inv-1",
				"customer_id": "cust-1",
				"total":       900.0,
				"balance":     900.0,
			},
		})
	}))
	defer srv.Close()

	c := newClient(srv)

	inv, err := c.CreateInvoice(context.Background(), ledger.NewInvoice{
		CustomerID:      "cust-1",
		ReferenceNumber: "TX-100",
		LineItems:       []ledger.LineItem{{Name: "Consultation", Rate: 100000}},
		Discount:        10000,
	})

	require.NoError(t, err)
	assert.Equal(t, "inv-1", inv.InvoiceID)
	assert.Equal(t, int64(90000), inv.Balance)

	assert.Equal(t, 100.0, got["discount"])
	assert.Equal(t, "entity_level", got["discount_type"])
	assert.Equal(t, true, got["is_discount_before_tax"])
}

func TestClient_CreateInvoice_NoDiscountOmitsFields(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, map[string]any{"invoice": map[string]any{"invoice_id": "inv-1"}})
	}))
	defer srv.Close()

	_, err := newClient(srv).CreateInvoice(context.Background(), ledger.NewInvoice{
		CustomerID:      "cust-1",
		ReferenceNumber: "TX-100",
		LineItems:       []ledger.LineItem{{Name: "Consultation", Rate: 100000}},
	})

	require.NoError(t, err)
	assert.NotContains(t, got, "discount")
	assert.NotContains(t, got, "discount_type")
}

func TestClient_FindPaymentForInvoice_VerifiesLinkage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cust-1", r.URL.Query().Get("customer_id"))

		// The first payment belongs to the same customer but a different
		// invoice; returning it would detach the wrong payment.
		writeJSON(w, map[string]any{
			"customerpayments": []map[string]any{
				{
					"payment_id": "pay-other",
					"amount":     250.0,
					"invoices":   []map[string]any{{"invoice_id": "inv-other", "amount_applied": 250.0}},
				},
				{
					"payment_id": "pay-1",
					"amount":     500.0,
					"invoices":   []map[string]any{{"invoice_id": "inv-1", "amount_applied": 500.0}},
				},
			},
		})
	}))
	defer srv.Close()

	p, found, err := newClient(srv).FindPaymentForInvoice(context.Background(), "inv-1", "cust-1")

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "pay-1", p.PaymentID)
	assert.Equal(t, int64(50000), p.Amount)
}

func TestClient_FindPaymentForInvoice_NoneApplied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"customerpayments": []map[string]any{
				{
					"payment_id": "pay-other",
					"invoices":   []map[string]any{{"invoice_id": "inv-other", "amount_applied": 100.0}},
				},
			},
		})
	}))
	defer srv.Close()

	p, found, err := newClient(srv).FindPaymentForInvoice(context.Background(), "inv-1", "cust-1")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, p)
}

func TestClient_CreatePayment_ClampsToBalance(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, map[string]any{
			"payment": map[string]any{
				"payment_id": "pay-1",
				"amount":     1000.0,
				"invoices":   []map[string]any{{"invoice_id": "inv-1", "amount_applied": 1000.0}},
			},
		})
	}))
	defer srv.Close()

	inv := &ledger.Invoice{InvoiceID: "inv-1", CustomerID: "cust-1", Balance: 100000}

	p, err := newClient(srv).CreatePayment(context.Background(), inv, 120000, "cash")

	require.NoError(t, err)
	assert.Equal(t, "pay-1", p.PaymentID)
	assert.Equal(t, int64(100000), p.Amount)

	assert.Equal(t, 1000.0, got["amount"])

	applications := got["invoices"].([]any)
	require.Len(t, applications, 1)
	assert.Equal(t, 1000.0, applications[0].(map[string]any)["amount_applied"])
}

func TestClient_UpdateInvoice_CarriesReason(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/invoices/inv-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, map[string]any{"invoice": map[string]any{"invoice_id": "inv-1"}})
	}))
	defer srv.Close()

	_, err := newClient(srv).UpdateInvoice(context.Background(), "inv-1", ledger.InvoicePatch{
		LineItems: []ledger.LineItem{{Name: "Consultation", Rate: 80000}},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, got["reason"])
}

func TestClient_VoidInvoiceAndDeletePayment(t *testing.T) {
	var voided, deleted bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/invoices/inv-1/status/void":
			voided = true
			writeJSON(w, map[string]any{"code": 0})
		case r.Method == http.MethodDelete && r.URL.Path == "/customerpayments/pay-1":
			deleted = true
			writeJSON(w, map[string]any{"code": 0})
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newClient(srv)

	require.NoError(t, c.VoidInvoice(context.Background(), "inv-1"))
	require.NoError(t, c.DeletePayment(context.Background(), "pay-1"))
	assert.True(t, voided)
	assert.True(t, deleted)
}

func TestClient_CreateCreditNote(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/creditnotes", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, map[string]any{
			"creditnote": map[string]any{
				"creditnote_id": "cn-1",
				"customer_id":   "cust-1",
				"total":         200.0,
			},
		})
	}))
	defer srv.Close()

	cn, err := newClient(srv).CreateCreditNote(context.Background(), "cust-1", 20000, "Overpayment on transaction TX-100")

	require.NoError(t, err)
	assert.Equal(t, "cn-1", cn.CreditNoteID)
	assert.Equal(t, int64(20000), cn.Total)
	assert.Equal(t, "cust-1", got["customer_id"])
	assert.Equal(t, "Overpayment on transaction TX-100", got["notes"])
}
