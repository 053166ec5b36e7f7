package ir

import "encoding/json"

// runJSON mirrors Run but without the Resolved* pointer fields: the
// resolved entities already appear verbatim in Program.Personas/
// Contexts/Flows/Anchors, so re-embedding them under each Run would
// duplicate the whole referenced subtree in every trace/compile dump.
type runJSON struct {
	Line            int               `json:"source_line"`
	Column          int               `json:"source_column"`
	FlowName        string            `json:"flow_name"`
	Arguments       []string          `json:"arguments"`
	PersonaName     string            `json:"persona_name,omitempty"`
	ContextName     string            `json:"context_name,omitempty"`
	AnchorNames     []string          `json:"anchor_names,omitempty"`
	OnFailure       string            `json:"on_failure,omitempty"`
	OnFailureParams map[string]string `json:"on_failure_params,omitempty"`
	OutputTo        string            `json:"output_to,omitempty"`
	Effort          string            `json:"effort,omitempty"`
}

// MarshalJSON emits Run without its resolved-pointer fields.
func (r Run) MarshalJSON() ([]byte, error) {
	return json.Marshal(runJSON{
		Line:            r.Line,
		Column:          r.Column,
		FlowName:        r.FlowName,
		Arguments:       r.Arguments,
		PersonaName:     r.PersonaName,
		ContextName:     r.ContextName,
		AnchorNames:     r.AnchorNames,
		OnFailure:       r.OnFailure,
		OnFailureParams: r.OnFailureParams,
		OutputTo:        r.OutputTo,
		Effort:          r.Effort,
	})
}
