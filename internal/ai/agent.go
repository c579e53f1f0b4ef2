package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pos-admin/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// catalogLimit caps how many products are listed in the prompt.
const catalogLimit = 400

type AgentService interface {
	InterpretCartRequest(ctx context.Context, request string, catalog []core.Product) (*core.AgentResponse, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// InterpretCartRequest turns a free-text request ("2 collares rojos y un arnés M") into
// proposed cart lines drawn from catalog, or a clarification question.
func (a *Agent) InterpretCartRequest(ctx context.Context, request string, catalog []core.Product) (*core.AgentResponse, error) {
	if strings.TrimSpace(request) == "" {
		return nil, fmt.Errorf("empty request")
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	prompt := fmt.Sprintf(`You are a sales assistant at a pet accessories shop.
Your goal is to turn the operator's request into cart lines using the product catalog below.
Rules:
1. Use ONLY product codes from the catalog.
2. Quantities must be positive decimal strings (e.g. "2" or "1.5"); use "1" when none is given.
3. If a requested item matches several products (sizes, colours) and the request does not say which, ask for clarification instead of guessing.
4. Provide a confidence score (0.0-1.0).
5. Explain how each item was matched.

Catalog (code | name | price | stock):
%s

Request: %s`, CatalogPrompt(catalog), request)

	schemaMap, err := responseSchema()
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "cart_proposal",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Proposed cart lines or a clarification question"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}
	return ParseAgentResponse(content, core.CatalogIndex(catalog))
}

// ParseAgentResponse decodes and checks the model output against the catalog index.
func ParseAgentResponse(content string, known map[string]core.Product) (*core.AgentResponse, error) {
	var out core.AgentResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if out.IsClarificationRequest {
		if out.Clarification == nil || strings.TrimSpace(out.Clarification.Message) == "" {
			return nil, fmt.Errorf("clarification requested without a message")
		}
		out.Proposal = nil
		return &out, nil
	}
	if out.Proposal == nil {
		return nil, fmt.Errorf("response carries neither a proposal nor a clarification")
	}

	out.Proposal.Normalize()
	if err := out.Proposal.Validate(known); err != nil {
		return nil, fmt.Errorf("proposal validation failed: %w", err)
	}
	out.Clarification = nil
	return &out, nil
}

// CatalogPrompt renders active products one per line for the prompt.
func CatalogPrompt(catalog []core.Product) string {
	var b strings.Builder
	n := 0
	for _, p := range catalog {
		if n == catalogLimit {
			break
		}
		if !p.IsActive {
			continue
		}
		fmt.Fprintf(&b, "%s | %s | %s | %s\n", p.Code, p.Name, p.GeneralPrice.StringFixed(2), p.Stock.String())
		n++
	}
	return b.String()
}

func responseSchema() (map[string]any, error) {
	schemaJSON, err := json.Marshal(generateSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.AgentResponse
	return reflector.Reflect(v)
}
