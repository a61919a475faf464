package policy_test

import (
	"testing"

	"github.com/VikingOwl91/mcp-simple-demo/internal/config"
	"github.com/VikingOwl91/mcp-simple-demo/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, def string, rules ...config.PolicyRule) *policy.Engine {
	t.Helper()
	e, err := policy.New(config.PolicyConfig{Default: def, Rules: rules})
	require.NoError(t, err)
	return e
}

func TestNew_InvalidExpression(t *testing.T) {
	_, err := policy.New(config.PolicyConfig{
		Default: "allow",
		Rules: []config.PolicyRule{
			{Name: "bad", Expression: `this is not valid CEL !!!`, Effect: "deny"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestNew_UnknownVariable(t *testing.T) {
	_, err := policy.New(config.PolicyConfig{
		Rules: []config.PolicyRule{
			{Name: "server-rule", Expression: `server == "x"`, Effect: "deny"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server-rule")
}

func TestEvaluate_EmptyDefaultsToAllow(t *testing.T) {
	e := newEngine(t, "")

	d := e.Evaluate(policy.RequestContext{
		Method: "tools/call",
		Tool:   policy.ToolContext{Name: "health_check"},
	})
	assert.Equal(t, policy.Allow, d.Effect)
	assert.Equal(t, "default:allow", d.Rule)
}

func TestEvaluate_DefaultDeny(t *testing.T) {
	e := newEngine(t, "deny",
		config.PolicyRule{Name: "allow-health", Expression: `tool.name == "health_check"`, Effect: "allow"},
	)

	d := e.Evaluate(policy.RequestContext{
		Method: "tools/call",
		Tool:   policy.ToolContext{Name: "get_weather"},
	})
	assert.Equal(t, policy.Deny, d.Effect)
	assert.Equal(t, "default:deny", d.Rule)

	d = e.Evaluate(policy.RequestContext{
		Method: "tools/call",
		Tool:   policy.ToolContext{Name: "health_check"},
	})
	assert.Equal(t, policy.Allow, d.Effect)
	assert.Equal(t, "allow-health", d.Rule)
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	e := newEngine(t, "allow",
		config.PolicyRule{Name: "deny-all", Expression: `true`, Effect: "deny", Message: "closed"},
		config.PolicyRule{Name: "allow-all", Expression: `true`, Effect: "allow"},
	)

	d := e.Evaluate(policy.RequestContext{Method: "tools/call"})
	assert.Equal(t, policy.Deny, d.Effect)
	assert.Equal(t, "deny-all", d.Rule)
	assert.Equal(t, "closed", d.Message)
}

func TestEvaluate_ToolArguments(t *testing.T) {
	e := newEngine(t, "allow",
		config.PolicyRule{
			Name:       "no-atlantis",
			Expression: `tool.name == "get_weather" && has(tool.arguments.location) && tool.arguments.location == "Atlantis"`,
			Effect:     "deny",
		},
	)

	d := e.Evaluate(policy.RequestContext{
		Method: "tools/call",
		Tool:   policy.ToolContext{Name: "get_weather", Arguments: map[string]any{"location": "Atlantis"}},
	})
	assert.Equal(t, policy.Deny, d.Effect)

	d = e.Evaluate(policy.RequestContext{
		Method: "tools/call",
		Tool:   policy.ToolContext{Name: "get_weather", Arguments: map[string]any{"location": "Paris"}},
	})
	assert.Equal(t, policy.Allow, d.Effect)

	// nil arguments behave like an empty map
	d = e.Evaluate(policy.RequestContext{
		Method: "tools/call",
		Tool:   policy.ToolContext{Name: "get_weather"},
	})
	assert.Equal(t, policy.Allow, d.Effect)
}

func TestEvaluate_ResourcePath(t *testing.T) {
	e := newEngine(t, "allow",
		config.PolicyRule{Name: "block-etc", Expression: `resource.path.startsWith("/etc/")`, Effect: "deny"},
	)

	d := e.Evaluate(policy.RequestContext{
		Method:   "resources/read",
		Resource: policy.ResourceContext{URI: "file:///etc/passwd", Path: "/etc/passwd"},
	})
	assert.Equal(t, policy.Deny, d.Effect)
	assert.Equal(t, "block-etc", d.Rule)

	d = e.Evaluate(policy.RequestContext{
		Method:   "resources/read",
		Resource: policy.ResourceContext{URI: "file:///tmp/notes.txt", Path: "/tmp/notes.txt"},
	})
	assert.Equal(t, policy.Allow, d.Effect)

	d = e.Evaluate(policy.RequestContext{
		Method:   "resources/read",
		Resource: policy.ResourceContext{URI: "resource://config"},
	})
	assert.Equal(t, policy.Allow, d.Effect)
}

func TestEvaluate_ResourceURI(t *testing.T) {
	e := newEngine(t, "allow",
		config.PolicyRule{Name: "hide-config", Expression: `resource.uri == "resource://config"`, Effect: "deny"},
	)

	d := e.Evaluate(policy.RequestContext{
		Method:   "resources/read",
		Resource: policy.ResourceContext{URI: "resource://config"},
	})
	assert.Equal(t, policy.Deny, d.Effect)
}

func TestEvaluate_PromptArguments(t *testing.T) {
	e := newEngine(t, "allow",
		config.PolicyRule{Name: "no-cobol", Expression: `prompt.name == "code_review" && prompt.arguments.language == "COBOL"`, Effect: "deny"},
	)

	d := e.Evaluate(policy.RequestContext{
		Method: "prompts/get",
		Prompt: policy.PromptContext{Name: "code_review", Arguments: map[string]string{"language": "COBOL"}},
	})
	assert.Equal(t, policy.Deny, d.Effect)

	d = e.Evaluate(policy.RequestContext{
		Method: "prompts/get",
		Prompt: policy.PromptContext{Name: "code_review", Arguments: map[string]string{"language": "Go"}},
	})
	assert.Equal(t, policy.Allow, d.Effect)
}

func TestEvaluate_MethodMatching(t *testing.T) {
	e := newEngine(t, "deny",
		config.PolicyRule{Name: "reads-only", Expression: `method == "resources/read"`, Effect: "allow"},
	)

	assert.Equal(t, policy.Allow, e.Evaluate(policy.RequestContext{Method: "resources/read"}).Effect)
	assert.Equal(t, policy.Deny, e.Evaluate(policy.RequestContext{Method: "tools/call"}).Effect)
}

func TestEvaluate_NonBooleanFailsClosed(t *testing.T) {
	e := newEngine(t, "allow",
		config.PolicyRule{Name: "bad-rule", Expression: `"not a bool"`, Effect: "allow"},
	)

	d := e.Evaluate(policy.RequestContext{Method: "tools/call"})
	assert.Equal(t, policy.Deny, d.Effect)
	assert.Contains(t, d.Rule, "non-boolean")
}

func TestEvaluate_MissingKeyFailsClosed(t *testing.T) {
	e := newEngine(t, "allow",
		config.PolicyRule{Name: "check-location", Expression: `tool.arguments.location == "Paris"`, Effect: "allow"},
	)

	d := e.Evaluate(policy.RequestContext{
		Method: "tools/call",
		Tool:   policy.ToolContext{Name: "health_check"},
	})
	assert.Equal(t, policy.Deny, d.Effect)
	assert.Contains(t, d.Rule, "error")
}
