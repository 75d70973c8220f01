package model_test

import (
	"encoding/json"
	"testing"

	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

func TestAmountUnmarshalShapes(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		wantCode string
		wantErr  bool
	}{
		{`{"amount": "1850.00", "code": "USD"}`, "1850", "USD", false},
		{`{"amount": 1850.5}`, "1850.5", "", false},
		{`{"amount": "0.00", "code": "EUR"}`, "0", "EUR", false},
		{`"1850.00"`, "1850", "", false},
		{`1850`, "1850", "", false},
		{`-42.17`, "-42.17", "", false},
		{`0`, "0", "", false},
		{`null`, "0", "", false},
		{`{"amount": null}`, "0", "", false},
		{`"abc"`, "", "", true},
		{`[1, 2]`, "", "", true},
	}
	for _, tt := range tests {
		var a model.Amount
		err := json.Unmarshal([]byte(tt.in), &a)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if a.Amount.String() != tt.want {
			t.Errorf("Unmarshal(%s) amount = %s, want %s", tt.in, a.Amount, tt.want)
		}
		if a.Code != tt.wantCode {
			t.Errorf("Unmarshal(%s) code = %q, want %q", tt.in, a.Code, tt.wantCode)
		}
	}
}

func TestAgingBucketsMixedShapes(t *testing.T) {
	// Bucket shapes vary within a single response.
	in := `{
		"0-30": {"amount": "100.00", "code": "USD"},
		"31-60": 250.5,
		"61-90": "75",
		"total": {"amount": "425.50"}
	}`
	var b model.AgingBuckets
	if err := json.Unmarshal([]byte(in), &b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := b.Current.Amount.String(); got != "100" {
		t.Errorf("0-30 = %s, want 100", got)
	}
	if got := b.Days31to60.Amount.String(); got != "250.5" {
		t.Errorf("31-60 = %s, want 250.5", got)
	}
	if got := b.Days61to90.Amount.String(); got != "75" {
		t.Errorf("61-90 = %s, want 75", got)
	}
	if !b.Days91Plus.IsZero() {
		t.Errorf("91+ = %s, want zero", b.Days91Plus.Amount)
	}
	if got := b.Total.Amount.String(); got != "425.5" {
		t.Errorf("total = %s, want 425.5", got)
	}
}
