package schemacompat

import "strings"

// Provider identifies an AI provider.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
	ProviderVertex    Provider = "vertex"
	ProviderDeepSeek  Provider = "deepseek"
	ProviderMeta      Provider = "meta"
)

// Model describes the target model a schema is prepared for.
type Model struct {
	// ID is the model identifier, e.g. "gpt-4o-mini" or "claude-3-5-sonnet".
	ID string
	// Provider is the provider serving the model.
	Provider Provider
	// SupportsStructuredOutputs reports native strict JSON schema support.
	SupportsStructuredOutputs bool
}

// String returns "provider/id", or just the id when the provider is unknown.
func (m Model) String() string {
	if m.Provider == "" {
		return m.ID
	}
	return m.Provider.String() + "/" + m.ID
}

// HasProvider reports whether the model is served by any of ps.
func (m Model) HasProvider(ps ...Provider) bool {
	for _, p := range ps {
		if m.Provider == p {
			return true
		}
	}
	return false
}

// IDContains reports whether the model id contains sub, ignoring case.
func (m Model) IDContains(sub string) bool {
	return strings.Contains(strings.ToLower(m.ID), strings.ToLower(sub))
}

// ParseModel parses "provider/id" into a Model. A string without a slash is
// taken as a bare id.
func ParseModel(s string) Model {
	p, id, ok := strings.Cut(s, "/")
	if !ok {
		return Model{ID: s}
	}
	return Model{ID: id, Provider: Provider(p)}
}
