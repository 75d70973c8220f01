package model

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amount is a currency amount as returned by the FreshBooks API.
// Accounting endpoints are inconsistent about its shape: most return an
// object like {"amount": "1850.00", "code": "USD"}, but some report fields
// arrive as a bare number or numeric string. UnmarshalJSON accepts all
// three, so callers never have to care which shape the server picked.
type Amount struct {
	Amount decimal.Decimal `json:"amount"`
	Code   string          `json:"code,omitempty"`
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			Amount decimal.Decimal `json:"amount"`
			Code   string          `json:"code"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*a = Amount{Amount: obj.Amount, Code: obj.Code}
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*a = Amount{Amount: d}
	return nil
}

// IsZero reports whether the amount is unset or exactly zero.
func (a Amount) IsZero() bool {
	return a.Amount.IsZero()
}
