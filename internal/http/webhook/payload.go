package webhook

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nocodeinfolab/ledgersync/internal/reconcile"
)

// Events arrive either as a bare transaction object or wrapped in
// {items: [...]}, of which only the first item is processed. Scalar fields
// may additionally come wrapped in source-system link arrays like
// [{"id": 1, "value": "X"}]. Parsing distinguishes an absent field, which
// takes its documented default, from a malformed one, which rejects the
// whole event.

const defaultPaymentMode = "cash"

type fieldError struct {
	field  string
	reason string
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("field %q %s", e.field, e.reason)
}

func parseTransaction(body []byte) (*reconcile.Transaction, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	if items, ok := raw["items"]; ok {
		list, ok := items.([]any)
		if !ok {
			return nil, &fieldError{"items", "must be a list"}
		}

		if len(list) == 0 {
			return nil, &fieldError{"items", "is empty"}
		}

		first, ok := list[0].(map[string]any)
		if !ok {
			return nil, &fieldError{"items", "must contain objects"}
		}

		raw = first
	}

	txID, found, err := stringField(raw, "Transaction ID")
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, &fieldError{"Transaction ID", "is required"}
	}

	name, err := customerName(raw)
	if err != nil {
		return nil, err
	}

	lines, err := serviceLines(raw)
	if err != nil {
		return nil, err
	}

	payable, found, err := amountField(raw, "Payable Amount")
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, &fieldError{"Payable Amount", "is required"}
	}

	paid, _, err := amountField(raw, "Total Amount Paid")
	if err != nil {
		return nil, err
	}

	discount, _, err := amountField(raw, "Discount")
	if err != nil {
		return nil, err
	}

	mode, found, err := stringField(raw, "Payment Method")
	if err != nil {
		return nil, err
	}

	if !found {
		mode = defaultPaymentMode
	}

	return &reconcile.Transaction{
		TransactionID:   txID,
		CustomerName:    name,
		ServiceLines:    lines,
		PayableAmount:   payable,
		DiscountAmount:  discount,
		TotalAmountPaid: paid,
		PaymentMode:     mode,
	}, nil
}

func customerName(raw map[string]any) (string, error) {
	for _, field := range []string{"Patient Name", "Customer Name"} {
		name, found, err := stringField(raw, field)
		if err != nil {
			return "", err
		}

		if found {
			return name, nil
		}
	}

	return "", &fieldError{"Patient Name", "is required"}
}

// serviceLines pairs the Services list with the Prices list by position.
// At least one service is required: a zero-line transaction would create a
// zero-line invoice that can never match on replay. A service whose price is
// absent gets a zero rate; a price without a service is dropped.
func serviceLines(raw map[string]any) ([]reconcile.ServiceLine, error) {
	services, err := stringList(raw, "Services")
	if err != nil {
		return nil, err
	}

	if len(services) == 0 {
		return nil, &fieldError{"Services", "is required"}
	}

	prices, err := amountList(raw, "Prices")
	if err != nil {
		return nil, err
	}

	lines := make([]reconcile.ServiceLine, len(services))

	for i, svc := range services {
		lines[i] = reconcile.ServiceLine{Description: svc}

		if i < len(prices) {
			lines[i].Rate = prices[i]
		}
	}

	return lines, nil
}

// unwrap resolves a source-system wrapped scalar: [{"id":1,"value":X}]
// becomes X, and a bare single-element list collapses to its element.
func unwrap(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}

	if len(list) == 0 {
		return nil
	}

	return unwrapItem(list[0])
}

// unwrapItem resolves one list element, which may itself be a wrapped value.
func unwrapItem(item any) any {
	if m, ok := item.(map[string]any); ok {
		if inner, ok := m["value"]; ok {
			return inner
		}
	}

	return item
}

func stringField(raw map[string]any, field string) (string, bool, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return "", false, nil
	}

	switch val := unwrap(v).(type) {
	case nil:
		return "", false, nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return "", false, nil
		}

		return s, true, nil
	default:
		return "", false, &fieldError{field, "must be a string"}
	}
}

func amountField(raw map[string]any, field string) (int64, bool, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return 0, false, nil
	}

	val := unwrap(v)
	if val == nil {
		return 0, false, nil
	}

	cents, err := parseCents(val)
	if err != nil {
		return 0, false, &fieldError{field, "must be a non-negative amount"}
	}

	return cents, true, nil
}

func stringList(raw map[string]any, field string) ([]string, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return nil, nil
	}

	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, &fieldError{field, "must contain non-empty strings"}
		}

		return []string{s}, nil
	}

	list, ok := v.([]any)
	if !ok {
		return nil, &fieldError{field, "must be a string or a list"}
	}

	out := make([]string, 0, len(list))

	for _, item := range list {
		switch val := unwrapItem(item).(type) {
		case string:
			s := strings.TrimSpace(val)
			if s == "" {
				return nil, &fieldError{field, "must contain non-empty strings"}
			}

			out = append(out, s)
		default:
			return nil, &fieldError{field, "must contain strings"}
		}
	}

	return out, nil
}

func amountList(raw map[string]any, field string) ([]int64, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return nil, nil
	}

	list, ok := v.([]any)
	if !ok {
		cents, err := parseCents(v)
		if err != nil {
			return nil, &fieldError{field, "must be an amount or a list of amounts"}
		}

		return []int64{cents}, nil
	}

	out := make([]int64, 0, len(list))

	for _, item := range list {
		cents, err := parseCents(unwrapItem(item))
		if err != nil {
			return nil, &fieldError{field, "must contain non-negative amounts"}
		}

		out = append(out, cents)
	}

	return out, nil
}

// maxAmount caps a single monetary field; anything above it would overflow
// the cents representation long before being a plausible invoice amount.
const maxAmount = 1e12

func parseCents(v any) (int64, error) {
	var amount float64

	switch val := v.(type) {
	case float64:
		amount = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, err
		}

		amount = parsed
	default:
		return 0, fmt.Errorf("unsupported amount type %T", v)
	}

	if amount < 0 || amount > maxAmount || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("amount out of range")
	}

	return int64(math.Round(amount * 100)), nil
}
