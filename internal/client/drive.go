// Package client drives every tool, resource and prompt of the demo server
// over an established session and prints what comes back.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	resourcePreview = 150
	promptPreview   = 100
	rule            = "============================================================"
)

type Options struct {
	// Location passed to get_weather.
	Location string
	// FilePath is read through the file:// resource template. Relative
	// paths are made absolute.
	FilePath string
	// Language passed to the code_review prompt.
	Language string
}

func (o Options) withDefaults() Options {
	if o.Location == "" {
		o.Location = "Paris"
	}
	if o.FilePath == "" {
		o.FilePath = "README.md"
	}
	if o.Language == "" {
		o.Language = "Python"
	}
	return o
}

// Drive lists and exercises everything the server exposes, in order,
// writing a report to w. The first failing call aborts the run.
func Drive(ctx context.Context, session *mcp.ClientSession, w io.Writer, opts Options) error {
	opts = opts.withDefaults()
	p := &printer{w: w}

	if err := driveTools(ctx, session, p, opts); err != nil {
		return err
	}
	if err := driveResources(ctx, session, p, opts); err != nil {
		return err
	}
	if err := drivePrompts(ctx, session, p, opts); err != nil {
		return err
	}

	p.section("ALL CHECKS COMPLETED")
	p.printf("   Tools: health_check, get_weather\n")
	p.printf("   Resources: resource://config, resource://readme, %s\n", FileURI(opts.FilePath))
	p.printf("   Prompts: code_review\n")
	return p.err
}

func driveTools(ctx context.Context, session *mcp.ClientSession, p *printer, opts Options) error {
	p.section("TOOLS")

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing tools: %w", err)
	}
	p.printf("\nFound %d tool(s):\n", len(tools.Tools))
	for _, t := range tools.Tools {
		p.printf("   - %s: %s\n", t.Name, t.Description)
	}

	calls := []struct {
		name string
		args map[string]any
	}{
		{"health_check", map[string]any{}},
		{"get_weather", map[string]any{"location": opts.Location}},
	}
	for _, c := range calls {
		p.printf("\n>>> Calling %s(%s)...\n", c.name, formatArgs(c.args))
		res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: c.name, Arguments: c.args})
		if err != nil {
			return fmt.Errorf("calling tool %s: %w", c.name, err)
		}
		if res.IsError {
			return fmt.Errorf("tool %s failed: %s", c.name, contentText(res.Content))
		}
		p.printf("<<< Result: %s\n", contentText(res.Content))
	}
	return nil
}

func driveResources(ctx context.Context, session *mcp.ClientSession, p *printer, opts Options) error {
	p.section("RESOURCES")

	resources, err := session.ListResources(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing resources: %w", err)
	}
	p.printf("\nFound %d static resource(s):\n", len(resources.Resources))
	for _, r := range resources.Resources {
		p.printf("   - %s (%s)\n", r.URI, r.Name)
	}

	templates, err := session.ListResourceTemplates(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing resource templates: %w", err)
	}
	p.printf("\nFound %d resource template(s):\n", len(templates.ResourceTemplates))
	for _, t := range templates.ResourceTemplates {
		p.printf("   - %s (%s)\n", t.URITemplate, t.Name)
	}

	for _, uri := range []string{"resource://config", "resource://readme", FileURI(opts.FilePath)} {
		p.printf("\n>>> Reading %s...\n", uri)
		res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
		if err != nil {
			return fmt.Errorf("reading resource %s: %w", uri, err)
		}
		for _, c := range res.Contents {
			p.printf("<<< Content preview: %s\n", preview(c.Text, resourcePreview))
		}
	}
	return nil
}

func drivePrompts(ctx context.Context, session *mcp.ClientSession, p *printer, opts Options) error {
	p.section("PROMPTS")

	prompts, err := session.ListPrompts(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing prompts: %w", err)
	}
	p.printf("\nFound %d prompt(s):\n", len(prompts.Prompts))
	for _, pr := range prompts.Prompts {
		p.printf("   - %s: %s\n", pr.Name, pr.Description)
	}

	p.printf("\n>>> Getting code_review prompt for %q...\n", opts.Language)
	res, err := session.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "code_review",
		Arguments: map[string]string{"language": opts.Language},
	})
	if err != nil {
		return fmt.Errorf("getting prompt code_review: %w", err)
	}
	p.printf("<<< Prompt messages:\n")
	for _, m := range res.Messages {
		p.printf("    [%s]: %s\n", m.Role, preview(contentText([]mcp.Content{m.Content}), promptPreview))
	}
	return nil
}

// FileURI builds the file:// URI for path, made absolute first. The path is
// percent-encoded as UTF-8 so names with spaces, '%' or non-ASCII letters
// match the server's file template.
func FileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

func contentText(content []mcp.Content) string {
	parts := make([]string, 0, len(content))
	for _, c := range content {
		switch v := c.(type) {
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		case nil:
		default:
			data, err := json.Marshal(v)
			if err != nil {
				parts = append(parts, fmt.Sprintf("%v", v))
				continue
			}
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, "\n")
}

func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%v", args)
	}
	return string(data)
}

// preview shortens s to n runes, marking the cut with "...".
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// printer remembers the first write error so the script reads linearly.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) section(title string) {
	p.printf("\n%s\n%s\n%s\n", rule, title, rule)
}
