package repl

import (
	"fmt"
	"strconv"
	"strings"

	"pos-admin/internal/app"
	"pos-admin/internal/core"

	"github.com/shopspring/decimal"
)

// ask prompts with the current value as default; "cancel" aborts the wizard.
func (c *console) ask(label, current string) (string, bool) {
	prompt := label + ": "
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, current)
	}
	v := c.readLine(prompt)
	if strings.EqualFold(v, "cancel") {
		fmt.Fprintln(c.out, "Cancelled.")
		return "", false
	}
	if v == "" {
		return current, true
	}
	return v, true
}

// clientWizard collects client fields, starting from cl.
func (c *console) clientWizard(cl core.Client) (core.Client, bool) {
	fmt.Fprintln(c.out, "Enter client details. Leave blank to keep the value in brackets, 'cancel' to abort.")
	fields := []struct {
		label string
		dst   *string
	}{
		{"DNI/RUC", &cl.DocumentNumber},
		{"Name", &cl.Name},
		{"Email", &cl.Email},
		{"Phone", &cl.Phone},
		{"Address", &cl.Address},
	}
	for _, f := range fields {
		v, ok := c.ask(f.label, *f.dst)
		if !ok {
			return cl, false
		}
		*f.dst = v
	}
	return cl, true
}

// userWizard collects a new operator account.
func (c *console) userWizard(u core.User) (core.User, bool) {
	fmt.Fprintln(c.out, "Enter user details. 'cancel' aborts.")
	var ok bool
	if u.Username, ok = c.ask("Username", u.Username); !ok {
		return u, false
	}
	if u.FullName, ok = c.ask("Full name", u.FullName); !ok {
		return u, false
	}
	if u.Email, ok = c.ask("Email", u.Email); !ok {
		return u, false
	}
	role := u.Role
	if role == "" {
		role = core.RoleSeller
	}
	if u.Role, ok = c.ask("Role (admin/vendedor)", role); !ok {
		return u, false
	}
	if u.Password, ok = c.ask("Password", ""); !ok {
		return u, false
	}
	u.IsActive = true
	return u, true
}

// checkoutWizard collects payment and delivery for the editor's current rows.
func (c *console) checkoutWizard(ed *core.Editor) (app.CheckoutRequest, bool) {
	var req app.CheckoutRequest
	totals := ed.Draft().Totals()
	fmt.Fprintf(c.out, "Total: %s (%s items)\n", core.FormatMoney(totals.TotalAmount), totals.TotalQuantity.String())

	names := make([]string, len(core.PaymentMethods))
	for i, m := range core.PaymentMethods {
		names[i] = fmt.Sprintf("%d) %s", i+1, m)
	}
	fmt.Fprintf(c.out, "Payment method: %s\n", strings.Join(names, "  "))
	for {
		raw, ok := c.ask("Method", string(core.PaymentCash))
		if !ok {
			return req, false
		}
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(core.PaymentMethods) {
			req.Payment.Method = core.PaymentMethods[n-1]
			break
		}
		m, err := core.ParsePaymentMethod(raw)
		if err != nil {
			fmt.Fprintf(c.out, "  %v\n", err)
			continue
		}
		req.Payment.Method = m
		break
	}

	for {
		raw, ok := c.ask("Amount paid now (blank = full)", "")
		if !ok {
			return req, false
		}
		if raw == "" {
			break
		}
		amt, err := core.ParseNumber(raw)
		if err != nil || amt.IsNegative() {
			fmt.Fprintln(c.out, "  Invalid amount.")
			continue
		}
		req.Payment.AmountPaid = amt
		break
	}

	paidNow := req.Payment.AmountPaid
	if paidNow.IsZero() {
		paidNow = totals.TotalAmount
	}
	if fee := core.Surcharge(req.Payment.Method, paidNow); fee.GreaterThan(decimal.Zero) {
		fmt.Fprintf(c.out, "Card surcharge: %s\n", core.FormatMoney(fee))
	}

	var ok bool
	switch {
	case req.Payment.Method.IsMobileWallet():
		if req.Payment.OperationCode, ok = c.ask("Operation code", ""); !ok {
			return req, false
		}
	case req.Payment.Method == core.PaymentTransfer:
		if req.Payment.LastDigits, ok = c.ask("Last 4 digits of the account", ""); !ok {
			return req, false
		}
	}

	delivery, ok := c.ask("Delivery (recojo/envio)", string(core.DeliveryPickup))
	if !ok {
		return req, false
	}
	req.Shipping.Mode = core.DeliveryMode(strings.ToLower(delivery))
	if req.Shipping.Mode == core.DeliveryShipping {
		fields := []struct {
			label string
			dst   *string
		}{
			{"Address", &req.Shipping.Address},
			{"Reference", &req.Shipping.Reference},
			{"Recipient", &req.Shipping.Recipient},
			{"Phone", &req.Shipping.Phone},
			{"Courier agency", &req.Shipping.Agency},
		}
		for _, f := range fields {
			if *f.dst, ok = c.ask(f.label, ""); !ok {
				return req, false
			}
		}
	}

	if req.Notes, ok = c.ask("Notes (optional)", ""); !ok {
		return req, false
	}
	return req, true
}
