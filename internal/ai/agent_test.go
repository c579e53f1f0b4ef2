package ai

import (
	"encoding/json"
	"strings"
	"testing"

	"pos-admin/internal/core"

	"github.com/shopspring/decimal"
)

func testCatalog() []core.Product {
	return []core.Product{
		{ID: 1, Code: "COL-R", Name: "Collar rojo", GeneralPrice: decimal.NewFromInt(15), Stock: decimal.NewFromInt(4), IsActive: true},
		{ID: 2, Code: "ARN-M", Name: "Arnés M", GeneralPrice: decimal.RequireFromString("32.9"), Stock: decimal.NewFromInt(1), IsActive: true},
	}
}

func TestGenerateSchema_CoversAgentResponse(t *testing.T) {
	schema, err := responseSchema()
	if err != nil {
		t.Fatalf("responseSchema: %v", err)
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %v", schema)
	}
	for _, key := range []string{"is_clarification_request", "clarification", "proposal"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing %q", key)
		}
	}
	raw, _ := json.Marshal(schema)
	if strings.Contains(string(raw), `"$ref"`) {
		t.Error("schema should be inlined without $ref")
	}
	if !strings.Contains(string(raw), "product_code") {
		t.Error("schema does not describe proposal lines")
	}
}

func TestCatalogPrompt(t *testing.T) {
	got := CatalogPrompt(testCatalog())
	want := "COL-R | Collar rojo | 15.00 | 4\nARN-M | Arnés M | 32.90 | 1\n"
	if got != want {
		t.Errorf("CatalogPrompt =\n%q\nwant\n%q", got, want)
	}
}

func TestCatalogPrompt_SkipsInactive(t *testing.T) {
	catalog := append(testCatalog(), core.Product{ID: 3, Code: "COR-OLD", Name: "Correa retirada", GeneralPrice: decimal.NewFromInt(9)})
	if got := CatalogPrompt(catalog); strings.Contains(got, "COR-OLD") {
		t.Errorf("inactive product in prompt:\n%s", got)
	}
}

func TestParseAgentResponse(t *testing.T) {
	known := core.CatalogIndex(testCatalog())

	tests := []struct {
		name       string
		content    string
		wantClar   bool
		wantLines  int
		wantErrSub string
	}{
		{
			name:      "proposal",
			content:   `{"is_clarification_request":false,"proposal":{"summary":"s","confidence":0.9,"reasoning":"r","lines":[{"product_code":"col-r","quantity":"2"},{"product_code":"ARN-M","quantity":""}]}}`,
			wantLines: 2,
		},
		{
			name:     "clarification",
			content:  `{"is_clarification_request":true,"clarification":{"message":"¿Qué talla?"}}`,
			wantClar: true,
		},
		{name: "clarification without message", content: `{"is_clarification_request":true}`, wantErrSub: "without a message"},
		{name: "empty", content: `{"is_clarification_request":false}`, wantErrSub: "neither"},
		{
			name:       "unknown code",
			content:    `{"is_clarification_request":false,"proposal":{"confidence":0.5,"lines":[{"product_code":"ZZZ","quantity":"1"}]}}`,
			wantErrSub: "not in the catalog",
		},
		{name: "not json", content: "sure, here you go", wantErrSub: "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAgentResponse(tt.content, known)
			if tt.wantErrSub != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErrSub) {
					t.Fatalf("got %v, want error containing %q", err, tt.wantErrSub)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.IsClarificationRequest != tt.wantClar {
				t.Errorf("IsClarificationRequest = %v", got.IsClarificationRequest)
			}
			if tt.wantLines > 0 {
				if got.Proposal == nil || len(got.Proposal.Lines) != tt.wantLines {
					t.Fatalf("proposal = %+v", got.Proposal)
				}
				if got.Proposal.Lines[0].ProductCode != "COL-R" || got.Proposal.Lines[1].Quantity != "1" {
					t.Errorf("proposal not normalized: %+v", got.Proposal.Lines)
				}
			}
		})
	}
}
