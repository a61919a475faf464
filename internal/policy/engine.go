// Package policy evaluates optional CEL access rules against incoming tool
// calls, resource reads and prompt requests.
package policy

import (
	"fmt"

	"github.com/VikingOwl91/mcp-simple-demo/internal/config"
	"github.com/google/cel-go/cel"
)

type Effect string

const (
	Allow Effect = "allow"
	Deny  Effect = "deny"
)

// Decision is the outcome of Evaluate. Rule names the matching rule, or
// "default:<effect>" when none matched.
type Decision struct {
	Effect  Effect
	Rule    string
	Message string
}

// RequestContext is what a rule can see about a request. Only the section
// matching Method is filled in.
type RequestContext struct {
	Method   string
	Tool     ToolContext
	Resource ResourceContext
	Prompt   PromptContext
}

type ToolContext struct {
	Name      string
	Arguments map[string]any
}

// ResourceContext describes a resource read. Path is set only for reads
// served by a URI template with a path variable.
type ResourceContext struct {
	URI  string
	Path string
}

type PromptContext struct {
	Name      string
	Arguments map[string]string
}

type compiledRule struct {
	name    string
	program cel.Program
	effect  Effect
	message string
}

// Engine holds compiled rules in configuration order.
type Engine struct {
	defaultEffect Effect
	rules         []compiledRule
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("method", cel.StringType),
		cel.Variable("tool", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("resource", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("prompt", cel.MapType(cel.StringType, cel.DynType)),
	)
}

// New compiles every rule in cfg. Expressions may reference method, tool,
// resource and prompt; a rule that fails to compile is an error.
func New(cfg config.PolicyConfig) (*Engine, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}

	rules := make([]compiledRule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		ast, issues := env.Compile(r.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compiling rule %q: %w", r.Name, issues.Err())
		}

		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("programming rule %q: %w", r.Name, err)
		}

		rules = append(rules, compiledRule{
			name:    r.Name,
			program: prg,
			effect:  Effect(r.Effect),
			message: r.Message,
		})
	}

	def := Effect(cfg.Default)
	if def == "" {
		def = Allow
	}

	return &Engine{
		defaultEffect: def,
		rules:         rules,
	}, nil
}

// Evaluate returns the effect of the first matching rule, or the default.
// A rule that fails to evaluate denies.
func (e *Engine) Evaluate(rc RequestContext) Decision {
	activation := map[string]any{
		"method": rc.Method,
		"tool": map[string]any{
			"name":      rc.Tool.Name,
			"arguments": ensureMap(rc.Tool.Arguments),
		},
		"resource": map[string]any{
			"uri":  rc.Resource.URI,
			"path": rc.Resource.Path,
		},
		"prompt": map[string]any{
			"name":      rc.Prompt.Name,
			"arguments": stringMap(rc.Prompt.Arguments),
		},
	}

	for _, rule := range e.rules {
		out, _, err := rule.program.Eval(activation)
		if err != nil {
			return Decision{
				Effect: Deny,
				Rule:   fmt.Sprintf("error evaluating rule %q: %v", rule.name, err),
			}
		}

		matched, ok := out.Value().(bool)
		if !ok {
			return Decision{
				Effect: Deny,
				Rule:   fmt.Sprintf("error evaluating rule %q: non-boolean result", rule.name),
			}
		}

		if matched {
			return Decision{
				Effect:  rule.effect,
				Rule:    rule.name,
				Message: rule.message,
			}
		}
	}

	return Decision{
		Effect: e.defaultEffect,
		Rule:   fmt.Sprintf("default:%s", e.defaultEffect),
	}
}

func ensureMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
