package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"pos-admin/internal/app"
	"pos-admin/internal/core"

	"github.com/shopspring/decimal"
)

// saleInput is the stdin document for the validate and sell commands.
type saleInput struct {
	Lines         []core.LinePayload `json:"detalle"`
	CustomerID    *int               `json:"cliente_id,omitempty"`
	QuotationID   *int               `json:"cotizacion_id,omitempty"`
	Method        string             `json:"metodo_pago"`
	AmountPaid    decimal.Decimal    `json:"monto_pagado"`
	OperationCode string             `json:"codigo_operacion"`
	LastDigits    string             `json:"ultimos_digitos"`
	Notes         string             `json:"observaciones"`
}

func (in saleInput) request() (app.CheckoutRequest, error) {
	method, err := core.ParsePaymentMethod(in.Method)
	if err != nil {
		return app.CheckoutRequest{}, err
	}
	return app.CheckoutRequest{
		CustomerID: in.CustomerID,
		Payment: core.PaymentInfo{
			Method:        method,
			AmountPaid:    in.AmountPaid,
			OperationCode: in.OperationCode,
			LastDigits:    in.LastDigits,
		},
		Notes: in.Notes,
	}, nil
}

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:]; the first element is the subcommand name.
// Credentials come from POS_USERNAME and POS_PASSWORD.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	sess, err := svc.Login(ctx, os.Getenv("POS_USERNAME"), os.Getenv("POS_PASSWORD"))
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	if err := run(ctx, svc, sess, args, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, svc app.ApplicationService, sess *core.Session, args []string, stdin io.Reader, stdout io.Writer) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	switch args[0] {
	case "products", "prod":
		result, err := svc.ListProducts(ctx, sess)
		if err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}
		return enc.Encode(result.Products)

	case "search", "s":
		if len(args) < 2 {
			return fmt.Errorf("usage: app search \"<text>\"")
		}
		result, err := svc.SearchProducts(ctx, sess, strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return enc.Encode(result.Products)

	case "quote", "q":
		if len(args) < 2 {
			return fmt.Errorf("usage: app quote <id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quotation id %q", args[1])
		}
		result, err := svc.GetQuotation(ctx, sess, id)
		if err != nil {
			return fmt.Errorf("failed to load quotation: %w", err)
		}
		return enc.Encode(result.Quotation)

	case "suggest", "sug":
		if len(args) < 2 {
			return fmt.Errorf("usage: app suggest \"<what the customer wants>\"")
		}
		result, err := svc.SuggestCart(ctx, sess, args[1])
		if err != nil {
			return fmt.Errorf("assistant error: %w", err)
		}
		if result.IsClarification {
			return fmt.Errorf("assistant needs clarification: %s", result.ClarificationMessage)
		}
		detail, err := core.AssembleQuotationDetail(result.Items)
		if err != nil {
			return err
		}
		return enc.Encode(detail)

	case "validate", "val", "v":
		var in saleInput
		if err := json.NewDecoder(stdin).Decode(&in); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		req, err := in.request()
		if err != nil {
			return err
		}
		payload, err := core.AssembleSale(core.SaleInput{
			Items:       core.LineItemsFromPayload(in.Lines),
			CustomerID:  in.CustomerID,
			QuotationID: in.QuotationID,
			Payment:     req.Payment,
			Session:     sess,
			Notes:       req.Notes,
		})
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		return enc.Encode(payload)

	case "sell":
		var in saleInput
		if err := json.NewDecoder(stdin).Decode(&in); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		req, err := in.request()
		if err != nil {
			return err
		}
		ed := svc.NewCartEditor(sess)
		if in.QuotationID != nil {
			ed.Kind = core.EditorQuotation
			ed.QuotationID = *in.QuotationID
		}
		ed.Append(core.LineItemsFromPayload(in.Lines)...)
		defer ed.Close()

		result, err := svc.Checkout(ctx, sess, ed, req)
		if err != nil {
			return fmt.Errorf("sale failed: %w", err)
		}
		fmt.Fprintf(stdout, "Sale %s registered. Total charged %s.\n",
			result.Sale.Number, core.FormatMoney(result.Payload.TotalWithFee))
		return nil

	case "dashboard", "dash":
		m, err := svc.GetDashboard(ctx, sess)
		if err != nil {
			return fmt.Errorf("failed to load dashboard: %w", err)
		}
		return enc.Encode(m)

	default:
		return fmt.Errorf("unknown command: %s\nAvailable: products, search, quote, suggest, validate, sell, dashboard", args[0])
	}
}
