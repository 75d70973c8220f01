package model_test

import (
	"testing"

	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

func TestInvoiceDisplayStatus(t *testing.T) {
	v3Paid := "paid"
	v3AutoPaid := "auto_paid"
	v3PartialHyphen := "partial-paid"
	empty := ""
	tests := []struct {
		invoice model.Invoice
		want    string
	}{
		{model.Invoice{V3Status: &v3Paid, Status: 1}, "Paid"},
		{model.Invoice{V3Status: &v3AutoPaid}, "Auto Paid"},
		{model.Invoice{V3Status: &v3PartialHyphen}, "Partial Paid"},
		{model.Invoice{V3Status: &empty, Status: 2}, "Sent"},
		{model.Invoice{Status: 1}, "Draft"},
		{model.Invoice{Status: 4}, "Paid"},
		{model.Invoice{Status: 42}, "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.invoice.DisplayStatus(); got != tt.want {
			t.Errorf("DisplayStatus() = %q, want %q", got, tt.want)
		}
	}
}

func TestInvoiceClientName(t *testing.T) {
	org := "Mystic"
	fname, lname := "Joseph", "Ottinger"
	tests := []struct {
		invoice model.Invoice
		want    string
	}{
		{model.Invoice{Organization: &org, FName: &fname}, "Mystic"},
		{model.Invoice{FName: &fname, LName: &lname}, "Joseph Ottinger"},
		{model.Invoice{LName: &lname}, "Ottinger"},
		{model.Invoice{}, "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.invoice.ClientName(); got != tt.want {
			t.Errorf("ClientName() = %q, want %q", got, tt.want)
		}
	}
}

func TestClientDisplayName(t *testing.T) {
	org := "Initech"
	fname := "Bill"
	tests := []struct {
		client model.Client
		want   string
	}{
		{model.Client{Organization: &org}, "Initech"},
		{model.Client{FName: &fname}, "Bill"},
		{model.Client{}, "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.client.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}
