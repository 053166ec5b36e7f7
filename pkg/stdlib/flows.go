package stdlib

import "github.com/Bemarking/axon-ai/pkg/ir"

// probeStep builds an ir.Step wrapping a targeted extraction.
func probeStep(name, outputType string, probe ir.Probe) ir.Step {
	return ir.Step{Name: name, OutputType: outputType, Probe: &probe}
}

// reasonStep builds an ir.Step wrapping a chain-of-thought directive.
func reasonStep(name, outputType string, reason ir.Reason) ir.Step {
	return ir.Step{Name: name, OutputType: outputType, Reason: &reason}
}

// weaveStep builds an ir.Step wrapping a synthesis directive.
func weaveStep(name, outputType string, weave ir.Weave) ir.Step {
	return ir.Step{Name: name, OutputType: outputType, Weave: &weave}
}

func steps(nodes ...ir.Step) []ir.Node {
	out := make([]ir.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}

// allFlows holds the 8 built-in multi-step cognitive pipelines.
var allFlows = []Flow{
	{
		IR: ir.Flow{
			Name:           "Summarize",
			Parameters:     []ir.Parameter{{Name: "doc", TypeName: "Document"}},
			ReturnTypeName: "Summary",
			Steps: steps(
				probeStep("Extract", "EntityMap", ir.Probe{
					Target: "doc",
					Fields: []string{"key_points", "main_themes", "conclusions", "supporting_evidence"},
				}),
				reasonStep("Condense", "Summary", ir.Reason{
					Name:       "Condensation",
					Given:      []string{"Extract"},
					Depth:      2,
					Ask:        "Distill the key points into a concise summary preserving the most important information.",
					OutputType: "Summary",
				}),
			),
		},
		Description: "Condense any document into a concise summary.",
		Category:    "analysis",
	},
	{
		IR: ir.Flow{
			Name:           "ExtractEntities",
			Parameters:     []ir.Parameter{{Name: "doc", TypeName: "Document"}},
			ReturnTypeName: "EntityMap",
			Steps: steps(
				probeStep("Identify", "EntityMap", ir.Probe{
					Target: "doc",
					Fields: []string{"persons", "organizations", "locations", "dates", "monetary_values", "events"},
				}),
				reasonStep("Classify", "EntityMap", ir.Reason{
					Name:       "Classification",
					Given:      []string{"Identify"},
					Depth:      1,
					Ask:        "Classify each entity by type and resolve co-references to canonical names.",
					OutputType: "EntityMap",
				}),
			),
		},
		Description: "Extract and classify named entities from a document.",
		Category:    "extraction",
	},
	{
		IR: ir.Flow{
			Name: "CompareDocuments",
			Parameters: []ir.Parameter{
				{Name: "doc_a", TypeName: "Document"},
				{Name: "doc_b", TypeName: "Document"},
			},
			ReturnTypeName: "StructuredReport",
			Steps: steps(
				probeStep("ExtractA", "EntityMap", ir.Probe{
					Target: "doc_a",
					Fields: []string{"key_claims", "structure", "conclusions", "methodology"},
				}),
				probeStep("ExtractB", "EntityMap", ir.Probe{
					Target: "doc_b",
					Fields: []string{"key_claims", "structure", "conclusions", "methodology"},
				}),
				reasonStep("Analyze", "ReasoningChain", ir.Reason{
					Name:       "Comparison",
					Given:      []string{"ExtractA", "ExtractB"},
					Depth:      3,
					ShowWork:   true,
					Ask:        "Compare the two documents. Identify agreements, contradictions, gaps, and unique contributions.",
					OutputType: "ReasoningChain",
				}),
				weaveStep("Synthesize", "StructuredReport", ir.Weave{
					Sources:    []string{"ExtractA", "ExtractB", "Analyze"},
					Target:     "ComparisonReport",
					FormatType: "StructuredReport",
					Priority:   []string{"contradictions", "agreements", "unique_contributions", "gaps"},
				}),
			),
		},
		Description: "Compare two documents side-by-side with detailed analysis.",
		Category:    "analysis",
	},
	{
		IR: ir.Flow{
			Name: "TranslateDocument",
			Parameters: []ir.Parameter{
				{Name: "doc", TypeName: "Document"},
				{Name: "target_lang", TypeName: "String"},
			},
			ReturnTypeName: "Translation",
			Steps: steps(
				probeStep("Analyze", "EntityMap", ir.Probe{
					Target: "doc",
					Fields: []string{"language", "tone", "technical_terms", "idiomatic_expressions", "cultural_references"},
				}),
				reasonStep("Translate", "Translation", ir.Reason{
					Name:       "Translation",
					Given:      []string{"Analyze"},
					Depth:      2,
					Ask:        "Translate the document preserving tone, technical accuracy, and cultural nuances.",
					OutputType: "Translation",
				}),
			),
		},
		Description: "Translate a document with cultural context preservation.",
		Category:    "translation",
	},
	{
		IR: ir.Flow{
			Name:           "FactCheck",
			Parameters:     []ir.Parameter{{Name: "claims", TypeName: "Document"}},
			ReturnTypeName: "StructuredReport",
			Steps: steps(
				probeStep("ExtractClaims", "EntityMap", ir.Probe{
					Target: "claims",
					Fields: []string{"factual_claims", "citations", "statistics", "dates", "named_entities"},
				}),
				reasonStep("Verify", "ReasoningChain", ir.Reason{
					Name:       "Verification",
					Given:      []string{"ExtractClaims"},
					Depth:      3,
					ShowWork:   true,
					Ask:        "For each claim, assess: Is it verifiable? Is the cited source reliable? Does the evidence support the claim?",
					OutputType: "ReasoningChain",
				}),
				weaveStep("Report", "StructuredReport", ir.Weave{
					Sources:    []string{"ExtractClaims", "Verify"},
					Target:     "FactCheckReport",
					FormatType: "StructuredReport",
					Priority:   []string{"false_claims", "unverifiable_claims", "verified_claims", "partially_true"},
				}),
			),
		},
		Description: "Verify factual claims with sourced evidence.",
		Category:    "verification",
	},
	{
		IR: ir.Flow{
			Name:           "SentimentAnalysis",
			Parameters:     []ir.Parameter{{Name: "doc", TypeName: "Document"}},
			ReturnTypeName: "SentimentScore",
			Steps: steps(
				probeStep("Extract", "EntityMap", ir.Probe{
					Target: "doc",
					Fields: []string{"emotional_tone", "sentiment_markers", "intensity_signals", "context_modifiers"},
				}),
				reasonStep("Analyze", "SentimentScore", ir.Reason{
					Name:       "SentimentScoring",
					Given:      []string{"Extract"},
					Depth:      2,
					Ask:        "Score the overall sentiment from -1 (very negative) to +1 (very positive). Account for sarcasm, irony, and context.",
					OutputType: "SentimentScore",
				}),
			),
		},
		Description: "Analyze tone and sentiment with nuanced scoring.",
		Category:    "analysis",
	},
	{
		IR: ir.Flow{
			Name: "ClassifyContent",
			Parameters: []ir.Parameter{
				{Name: "doc", TypeName: "Document"},
				{Name: "categories", TypeName: "String"},
			},
			ReturnTypeName: "EntityMap",
			Steps: steps(
				probeStep("Extract", "EntityMap", ir.Probe{
					Target: "doc",
					Fields: []string{"topics", "keywords", "themes", "domain_signals"},
				}),
				reasonStep("Classify", "EntityMap", ir.Reason{
					Name:       "Classification",
					Given:      []string{"Extract"},
					Depth:      2,
					Ask:        "Classify the content into the provided categories with confidence scores for each category.",
					OutputType: "EntityMap",
				}),
			),
		},
		Description: "Classify content into user-defined categories.",
		Category:    "classification",
	},
	{
		IR: ir.Flow{
			Name:           "GenerateReport",
			Parameters:     []ir.Parameter{{Name: "data", TypeName: "Document"}},
			ReturnTypeName: "StructuredReport",
			Steps: steps(
				probeStep("Extract", "EntityMap", ir.Probe{
					Target: "data",
					Fields: []string{"key_metrics", "trends", "anomalies", "comparisons", "conclusions"},
				}),
				reasonStep("Analyze", "ReasoningChain", ir.Reason{
					Name:       "Analysis",
					Given:      []string{"Extract"},
					Depth:      3,
					ShowWork:   true,
					Ask:        "Analyze the data to identify patterns, draw conclusions, and formulate recommendations.",
					OutputType: "ReasoningChain",
				}),
				weaveStep("Synthesize", "StructuredReport", ir.Weave{
					Sources:    []string{"Extract", "Analyze"},
					Target:     "FinalReport",
					FormatType: "StructuredReport",
					Priority:   []string{"executive_summary", "key_findings", "recommendations", "detailed_analysis"},
				}),
			),
		},
		Description: "Generate a structured report from raw data.",
		Category:    "reporting",
	},
}
