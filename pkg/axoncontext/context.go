// Package axoncontext maintains the mutable execution state that flows
// between steps within a single execution unit: step results, message
// history, flow variable bindings, and the compiled system prompt.
package axoncontext

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Conversation roles accepted by AppendMessage.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var validRoles = map[string]bool{
	RoleSystem:    true,
	RoleUser:      true,
	RoleAssistant: true,
}

// Message is a single turn in the conversation history.
type Message struct {
	Role    string
	Content string
}

// Snapshot is an immutable point-in-time capture of execution state, used
// by the tracer and debugging tools.
type Snapshot struct {
	StepResults  map[string]any
	MessageCount int
	Variables    map[string]any
	CurrentStep  string
}

// ToMap serializes the snapshot to a JSON-compatible map, matching the
// shape emitted alongside trace events.
func (s Snapshot) ToMap() map[string]any {
	result := map[string]any{
		"step_results":  reprMap(s.StepResults),
		"message_count": s.MessageCount,
	}
	if len(s.Variables) > 0 {
		result["variables"] = reprMap(s.Variables)
	}
	if s.CurrentStep != "" {
		result["current_step"] = s.CurrentStep
	}
	return result
}

func reprMap(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

// Manager holds the working memory of a running AXON execution unit: one
// run statement gets one Manager.
type Manager struct {
	systemPrompt string
	stepResults  map[string]any
	stepOrder    []string
	variables    map[string]any
	messages     []Message
	currentStep  string
}

// New creates a Manager for an execution unit, binding its compiled
// system prompt.
func New(systemPrompt string) *Manager {
	return &Manager{
		systemPrompt: systemPrompt,
		stepResults:  make(map[string]any),
		variables:    make(map[string]any),
	}
}

// SystemPrompt returns the compiled system prompt for this execution unit.
func (m *Manager) SystemPrompt() string {
	return m.systemPrompt
}

// CurrentStep returns the name of the step currently being executed.
func (m *Manager) CurrentStep() string {
	return m.currentStep
}

// SetCurrentStep records which step is currently executing.
func (m *Manager) SetCurrentStep(name string) {
	m.currentStep = name
}

// SetStepResult records the output of a completed step.
func (m *Manager) SetStepResult(stepName string, result any) error {
	if stepName == "" {
		return fmt.Errorf("step name must not be empty")
	}
	if _, exists := m.stepResults[stepName]; !exists {
		m.stepOrder = append(m.stepOrder, stepName)
	}
	m.stepResults[stepName] = result
	return nil
}

// GetStepResult retrieves the output of a previously completed step.
func (m *Manager) GetStepResult(stepName string) (any, error) {
	result, ok := m.stepResults[stepName]
	if !ok {
		return nil, fmt.Errorf("step %q has no result, available: %v", stepName, m.CompletedSteps())
	}
	return result, nil
}

// HasStepResult reports whether a step has a recorded result.
func (m *Manager) HasStepResult(stepName string) bool {
	_, ok := m.stepResults[stepName]
	return ok
}

// CompletedSteps returns the names of all steps with recorded results, in
// insertion order.
func (m *Manager) CompletedSteps() []string {
	out := make([]string, len(m.stepOrder))
	copy(out, m.stepOrder)
	return out
}

// SetVariable binds a named variable in the execution context.
func (m *Manager) SetVariable(name string, value any) error {
	if name == "" {
		return fmt.Errorf("variable name must not be empty")
	}
	m.variables[name] = value
	return nil
}

// GetVariable retrieves a named variable from the execution context.
func (m *Manager) GetVariable(name string) (any, error) {
	value, ok := m.variables[name]
	if !ok {
		return nil, fmt.Errorf("variable %q is not defined, available: %v", name, m.variableNames())
	}
	return value, nil
}

// HasVariable reports whether a named variable exists.
func (m *Manager) HasVariable(name string) bool {
	_, ok := m.variables[name]
	return ok
}

// Variables returns a shallow copy of all variable bindings.
func (m *Manager) Variables() map[string]any {
	out := make(map[string]any, len(m.variables))
	for k, v := range m.variables {
		out[k] = v
	}
	return out
}

func (m *Manager) variableNames() []string {
	names := make([]string, 0, len(m.variables))
	for k := range m.variables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// AppendMessage adds a message to the conversation history.
func (m *Manager) AppendMessage(role, content string) error {
	if !validRoles[role] {
		return fmt.Errorf("invalid role %q, must be one of: system, user, assistant", role)
	}
	if content == "" {
		return fmt.Errorf("message content must not be empty")
	}
	m.messages = append(m.messages, Message{Role: role, Content: content})
	return nil
}

// MessageHistory returns a copy of the full message history.
func (m *Manager) MessageHistory() []Message {
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// MessageCount returns the number of messages in the conversation history.
func (m *Manager) MessageCount() int {
	return len(m.messages)
}

// ClearMessages clears the entire message history.
func (m *Manager) ClearMessages() {
	m.messages = nil
}

// Snapshot captures an immutable snapshot of the current execution state.
// Step results and variables are deep-copied so later mutation of the
// Manager cannot affect the captured snapshot.
func (m *Manager) Snapshot() Snapshot {
	return Snapshot{
		StepResults:  deepCopyMap(m.stepResults),
		MessageCount: m.MessageCount(),
		Variables:    deepCopyMap(m.variables),
		CurrentStep:  m.currentStep,
	}
}

// Reset clears all state, returning the context to its initial condition.
// The system prompt is preserved; everything else is cleared.
func (m *Manager) Reset() {
	m.stepResults = make(map[string]any)
	m.stepOrder = nil
	m.variables = make(map[string]any)
	m.messages = nil
	m.currentStep = ""
}

// deepCopyMap clones a map[string]any whose values may themselves be
// nested maps/slices/scalars, via a JSON marshal/unmarshal round trip.
// Go has no generic copy.deepcopy; step results and variables only ever
// hold JSON-shaped values (tool outputs, model responses), so this is
// sufficient without pulling in a reflection-based deep-clone dependency.
func deepCopyMap(m map[string]any) map[string]any {
	if len(m) == 0 {
		return map[string]any{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	var clone map[string]any
	if err := json.Unmarshal(data, &clone); err != nil {
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	return clone
}
