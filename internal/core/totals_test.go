package core_test

import (
	"testing"

	"pos-admin/internal/core"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name      string
		items     []core.LineItem
		surcharge string
		wantQty   string
		wantAmt   string
		wantFee   string
	}{
		{"empty", nil, "0", "0", "0", "0"},
		{
			"example",
			[]core.LineItem{{Quantity: dec("2"), UnitPrice: dec("10")}, {Quantity: dec("1"), UnitPrice: dec("5")}},
			"5", "3", "25", "30",
		},
		{
			"fractional quantities",
			[]core.LineItem{{Quantity: dec("1.5"), UnitPrice: dec("3.30")}, {Quantity: dec("0.25"), UnitPrice: dec("8")}},
			"0", "1.75", "6.95", "6.95",
		},
		{
			// Totals ignore a stale Subtotal and use quantity × price.
			"stale subtotal",
			[]core.LineItem{{Quantity: dec("2"), UnitPrice: dec("3"), Subtotal: dec("100")}},
			"0", "2", "6", "6",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.ComputeTotals(tt.items, dec(tt.surcharge))
			if !got.TotalQuantity.Equal(dec(tt.wantQty)) {
				t.Errorf("TotalQuantity = %s, want %s", got.TotalQuantity, tt.wantQty)
			}
			if !got.TotalAmount.Equal(dec(tt.wantAmt)) {
				t.Errorf("TotalAmount = %s, want %s", got.TotalAmount, tt.wantAmt)
			}
			if !got.TotalWithSurcharge.Equal(dec(tt.wantFee)) {
				t.Errorf("TotalWithSurcharge = %s, want %s", got.TotalWithSurcharge, tt.wantFee)
			}
		})
	}
}

func TestSurcharge(t *testing.T) {
	tests := []struct {
		method core.PaymentMethod
		paid   string
		want   string
	}{
		{core.PaymentCard, "100", "5"},
		{core.PaymentCard, "33.33", "1.67"},
		{core.PaymentCard, "0", "0"},
		{core.PaymentCash, "100", "0"},
		{core.PaymentYape, "100", "0"},
		{core.PaymentTransfer, "100", "0"},
	}
	for _, tt := range tests {
		got := core.Surcharge(tt.method, dec(tt.paid))
		if !got.Equal(dec(tt.want)) {
			t.Errorf("Surcharge(%s, %s) = %s, want %s", tt.method, tt.paid, got, tt.want)
		}
	}
}

func TestParsePaymentMethod(t *testing.T) {
	for in, want := range map[string]core.PaymentMethod{
		"cash": core.PaymentCash, "Tarjeta": core.PaymentCard, " yape ": core.PaymentYape,
		"plin": core.PaymentPlin, "transfer": core.PaymentTransfer,
	} {
		got, err := core.ParsePaymentMethod(in)
		if err != nil || got != want {
			t.Errorf("ParsePaymentMethod(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := core.ParsePaymentMethod("cheque"); err == nil {
		t.Error("expected error for unknown method")
	}
	if !core.PaymentPlin.IsMobileWallet() || core.PaymentCard.IsMobileWallet() {
		t.Error("IsMobileWallet mismatch")
	}
}
