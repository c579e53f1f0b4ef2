package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer settles a sale. Values are the backend's codes.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "efectivo"
	PaymentCard     PaymentMethod = "tarjeta"
	PaymentYape     PaymentMethod = "yape"
	PaymentPlin     PaymentMethod = "plin"
	PaymentTransfer PaymentMethod = "transferencia"
)

// PaymentMethods lists every accepted method in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentYape, PaymentPlin, PaymentTransfer}

// CardSurchargeRate is the processing fee charged on the amount paid by card.
var CardSurchargeRate = decimal.RequireFromString("0.05")

// ParsePaymentMethod accepts the backend code or a common English alias.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "efectivo", "cash":
		return PaymentCash, nil
	case "tarjeta", "card":
		return PaymentCard, nil
	case "yape":
		return PaymentYape, nil
	case "plin":
		return PaymentPlin, nil
	case "transferencia", "transfer":
		return PaymentTransfer, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", s)
	}
}

// Valid reports whether m is one of the accepted methods.
func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// IsMobileWallet reports whether the method is settled through a wallet app
// and therefore carries an operation code.
func (m PaymentMethod) IsMobileWallet() bool {
	return m == PaymentYape || m == PaymentPlin
}

// Surcharge returns the fee added for method on the amount being paid now.
// Only card payments carry a surcharge; it is rounded to cents.
func Surcharge(method PaymentMethod, amountPaidNow decimal.Decimal) decimal.Decimal {
	if method != PaymentCard || !amountPaidNow.IsPositive() {
		return decimal.Zero
	}
	return amountPaidNow.Mul(CardSurchargeRate).Round(2)
}
