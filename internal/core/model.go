package core

// CartProposalLine is one product the assistant believes the operator asked for.
type CartProposalLine struct {
	ProductCode string `json:"product_code" jsonschema_description:"The exact product code from the provided catalog"`
	Quantity    string `json:"quantity" jsonschema_description:"The quantity requested, as a positive decimal string (e.g. '2' or '1.5')"`
}

// CartProposal is the AI-generated set of cart lines for a natural language request.
type CartProposal struct {
	Summary    string             `json:"summary" jsonschema_description:"A brief restatement of what the customer wants"`
	Confidence float64            `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning  string             `json:"reasoning" jsonschema_description:"How each requested item was matched to a catalog product"`
	Lines      []CartProposalLine `json:"lines" jsonschema_description:"Products to add to the cart. Use only codes present in the catalog."`
}

// ClarificationRequest is returned by the AI when the request cannot be matched to the catalog.
type ClarificationRequest struct {
	Message string `json:"message" jsonschema_description:"A question for the operator (e.g. 'Which size of harness: S, M or L?')."`
}

// AgentResponse wraps the AI output: exactly one of Clarification or Proposal is set.
type AgentResponse struct {
	IsClarificationRequest bool                  `json:"is_clarification_request" jsonschema_description:"Set to true ONLY if the request cannot be matched to catalog products with confidence."`
	Clarification          *ClarificationRequest `json:"clarification,omitempty" jsonschema_description:"Required if is_clarification_request is true."`
	Proposal               *CartProposal         `json:"proposal,omitempty" jsonschema_description:"Required if is_clarification_request is false."`
}
