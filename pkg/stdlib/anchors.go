package stdlib

import "github.com/Bemarking/axon-ai/pkg/ir"

// allAnchors holds the 8 built-in hard constraints.
var allAnchors = []Anchor{
	{
		IR: ir.Anchor{
			Name:              "NoHallucination",
			Require:           "source_citation",
			Reject:            []string{"speculation", "unverifiable_claim"},
			ConfidenceFloor:   floatPtr(0.80),
			UnknownResponse:   "I don't have sufficient information to make this determination.",
			OnViolation:       "raise",
			OnViolationTarget: "AnchorBreachError",
		},
		Checker:     checkNoHallucination,
		Description: "Requires cited sources for all claims. Rejects speculation and unverifiable assertions.",
		Severity:    "error",
	},
	{
		IR: ir.Anchor{
			Name:              "FactualOnly",
			Require:           "factual_grounding",
			Reject:            []string{"opinion", "speculation"},
			ConfidenceFloor:   floatPtr(0.85),
			UnknownResponse:   "Insufficient factual evidence to respond.",
			OnViolation:       "raise",
			OnViolationTarget: "AnchorBreachError",
		},
		Checker:     checkFactualOnly,
		Description: "Restricts output to factual claims only. No opinions, unless explicitly declared as Opinion type.",
		Severity:    "error",
	},
	{
		IR: ir.Anchor{
			Name:              "SafeOutput",
			Reject:            []string{"harmful_content", "violence", "hate_speech"},
			OnViolation:       "raise",
			OnViolationTarget: "AnchorBreachError",
		},
		Checker:     checkSafeOutput,
		Description: "Rejects harmful content, violence, and hate speech.",
		Severity:    "error",
	},
	{
		IR: ir.Anchor{
			Name:              "PrivacyGuard",
			Reject:            []string{"pii", "personal_data", "ssn", "phone_number"},
			OnViolation:       "raise",
			OnViolationTarget: "AnchorBreachError",
		},
		Checker:     checkPrivacyGuard,
		Description: "Prevents exposure of personally identifiable information (SSNs, credit cards, emails, phone numbers).",
		Severity:    "error",
	},
	{
		IR: ir.Anchor{
			Name:        "NoBias",
			Reject:      []string{"political_bias", "demographic_bias", "gender_bias"},
			OnViolation: "warn",
		},
		Checker:     checkNoBias,
		Description: "Enforces political and demographic neutrality. Detects loaded language and explicit bias.",
		Severity:    "warning",
	},
	{
		IR: ir.Anchor{
			Name:              "ChildSafe",
			Reject:            []string{"adult_content", "violence", "profanity", "drugs"},
			OnViolation:       "raise",
			OnViolationTarget: "AnchorBreachError",
		},
		Checker:     checkChildSafe,
		Description: "Ensures all content is appropriate for minors. Rejects adult content, graphic violence, profanity, and drugs.",
		Severity:    "error",
	},
	{
		IR: ir.Anchor{
			Name:              "NoCodeExecution",
			Reject:            []string{"code_execution", "system_command", "file_write"},
			OnViolation:       "raise",
			OnViolationTarget: "AnchorBreachError",
		},
		Checker:     checkNoCodeExecution,
		Description: "Prevents the model from executing code, running system commands, or performing file operations.",
		Severity:    "error",
	},
	{
		IR: ir.Anchor{
			Name:        "AuditTrail",
			Require:     "human_review",
			OnViolation: "warn",
		},
		Checker:     checkAuditTrail,
		Description: "Forces full reasoning trace in output. Requires visible reasoning steps for audit and review purposes.",
		Severity:    "warning",
	},
}
