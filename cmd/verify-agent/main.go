// verify-agent sends one cart request to the assistant against a small fixed
// catalog and prints the structured answer. It checks the OpenAI key and the
// response schema without touching the POS backend.
//
// Usage: go run ./cmd/verify-agent ["request text"]
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"pos-admin/internal/ai"
	"pos-admin/internal/core"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	catalog := []core.Product{
		{ID: 1, Code: "COL-R-S", Name: "Collar rojo S", GeneralPrice: decimal.RequireFromString("15.00"), Stock: decimal.NewFromInt(12), IsActive: true},
		{ID: 2, Code: "COL-R-M", Name: "Collar rojo M", GeneralPrice: decimal.RequireFromString("18.00"), Stock: decimal.NewFromInt(8), IsActive: true},
		{ID: 3, Code: "ARN-M", Name: "Arnés acolchado M", GeneralPrice: decimal.RequireFromString("32.50"), Stock: decimal.NewFromInt(4), IsActive: true},
		{ID: 4, Code: "COR-3M", Name: "Correa 3 metros", GeneralPrice: decimal.RequireFromString("22.00"), Stock: decimal.NewFromInt(0), IsActive: true},
	}

	request := "dos collares rojos talla M y un arnés M"
	if len(os.Args) > 1 {
		request = os.Args[1]
	}

	agent := ai.NewAgent(apiKey)
	fmt.Printf("REQUEST: %s\n", request)
	resp, err := agent.InterpretCartRequest(context.Background(), request, catalog)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if resp.IsClarificationRequest {
		fmt.Printf("\n[CLARIFICATION] %s\n", resp.Clarification.Message)
		return
	}

	p := resp.Proposal
	fmt.Printf("\n--- PROPOSAL ---\n")
	fmt.Printf("Summary:    %s\n", p.Summary)
	fmt.Printf("Confidence: %.2f\n", p.Confidence)
	fmt.Printf("Reasoning:  %s\n", p.Reasoning)

	items := p.ToLineItems(core.CatalogIndex(catalog))
	fmt.Printf("\nLines:\n")
	for _, it := range items {
		fmt.Printf("- %-8s %-20s %6s x %8s = %s\n", it.ProductCode, it.ProductName,
			it.Quantity, it.UnitPrice.StringFixed(2), core.FormatMoney(it.Subtotal))
	}
	fmt.Printf("Total: %s\n", core.FormatMoney(core.ComputeTotals(items, decimal.Zero).TotalAmount))
}
