package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/VikingOwl91/mcp-simple-demo/internal/handlers"
	"github.com/VikingOwl91/mcp-simple-demo/internal/logging"
	"github.com/VikingOwl91/mcp-simple-demo/internal/policy"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
)

const (
	kindTool             = "tool"
	kindResource         = "resource"
	kindResourceTemplate = "resource_template"
	kindPrompt           = "prompt"

	ToolHealthCheck = "health_check"
	ToolGetWeather  = "get_weather"

	ResourceReadme = "resource://readme"
	ResourceConfig = "resource://config"

	// FileTemplate uses reserved expansion so that absolute paths, slashes
	// included, bind to the path variable: file:///etc/hosts -> /etc/hosts.
	FileTemplate = "file://{+path}"

	PromptCodeReview = "code_review"
)

type operation struct {
	kind string
	name string
	add  func(*Server)
}

// operations is the registration table applied by New.
var operations = []operation{
	{kindTool, ToolHealthCheck, (*Server).addHealthCheck},
	{kindTool, ToolGetWeather, (*Server).addGetWeather},
	{kindResource, ResourceReadme, (*Server).addReadme},
	{kindResource, ResourceConfig, (*Server).addConfig},
	{kindResourceTemplate, FileTemplate, (*Server).addFileTemplate},
	{kindPrompt, PromptCodeReview, (*Server).addCodeReview},
}

var fileTemplate = uritemplate.MustNew(FileTemplate)

type healthCheckInput struct{}

type getWeatherInput struct {
	Location string `json:"location" jsonschema:"the city or place to report the weather for"`
}

func (s *Server) addHealthCheck() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolHealthCheck,
		Description: "Check the health status of the MCP server.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ healthCheckInput) (*mcp.CallToolResult, handlers.HealthStatus, error) {
		if err := s.authorizeTool(ctx, req, ToolHealthCheck); err != nil {
			return nil, handlers.HealthStatus{}, err
		}
		return nil, handlers.HealthCheck(), nil
	})
}

func (s *Server) addGetWeather() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolGetWeather,
		Description: "Get the current weather for a specified location.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, in getWeatherInput) (*mcp.CallToolResult, handlers.WeatherReport, error) {
		if err := s.authorizeTool(ctx, req, ToolGetWeather); err != nil {
			return nil, handlers.WeatherReport{}, err
		}
		return nil, handlers.GetWeather(in.Location), nil
	})
}

func (s *Server) authorizeTool(ctx context.Context, req *mcp.CallToolRequest, name string) error {
	if info := logging.GetAuditInfo(ctx); info != nil {
		info.ToolName = name
	}
	args, err := toolArguments(req)
	if err != nil {
		return err
	}
	return s.authorize(ctx, policy.RequestContext{
		Method: "tools/call",
		Tool:   policy.ToolContext{Name: name, Arguments: args},
	})
}

func (s *Server) addReadme() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         ResourceReadme,
		Name:        "readme",
		Description: "Documentation of the demonstration server.",
		MIMEType:    "text/markdown",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if err := s.authorizeResource(ctx, req.Params.URI, ""); err != nil {
			return nil, err
		}
		return s.textResult(ctx, req.Params.URI, "text/markdown", handlers.ReadReadme(s.cfg.ReadmePath)), nil
	})
}

func (s *Server) addConfig() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         ResourceConfig,
		Name:        "config",
		Description: "Configuration of the demonstration server.",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if err := s.authorizeResource(ctx, req.Params.URI, ""); err != nil {
			return nil, err
		}
		data, err := json.Marshal(handlers.ServerConfig())
		if err != nil {
			return nil, fmt.Errorf("marshaling config: %w", err)
		}
		return s.textResult(ctx, req.Params.URI, "application/json", string(data)), nil
	})
}

func (s *Server) addFileTemplate() {
	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: FileTemplate,
		Name:        "file",
		Description: "Read the contents of a local file at the given path.",
		MIMEType:    "text/plain",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		path := FilePath(uri)
		if err := s.authorizeResource(ctx, uri, path); err != nil {
			return nil, err
		}
		return s.textResult(ctx, uri, "text/plain", handlers.ReadFile(path)), nil
	})
}

// FilePath extracts the path variable from a URI matching FileTemplate.
// URIs that do not match yield the empty path.
func FilePath(uri string) string {
	values := fileTemplate.Match(uri)
	if values == nil {
		return ""
	}
	return values.Get("path").String()
}

func (s *Server) authorizeResource(ctx context.Context, uri, path string) error {
	if info := logging.GetAuditInfo(ctx); info != nil {
		info.ResourceURI = uri
	}
	return s.authorize(ctx, policy.RequestContext{
		Method:   "resources/read",
		Resource: policy.ResourceContext{URI: uri, Path: path},
	})
}

func (s *Server) textResult(ctx context.Context, uri, mimeType, text string) *mcp.ReadResourceResult {
	contents := []*mcp.ResourceContents{{URI: uri, MIMEType: mimeType, Text: text}}
	if s.cfg.MaxOutputBytes > 0 {
		truncated, wasTruncated := TruncateResourceContents(contents, s.cfg.MaxOutputBytes)
		if wasTruncated {
			contents = truncated
			if info := logging.GetAuditInfo(ctx); info != nil {
				info.Truncated = true
			}
		}
	}
	return &mcp.ReadResourceResult{Contents: contents}
}

func (s *Server) addCodeReview() {
	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        PromptCodeReview,
		Description: "Provide a structured prompt for reviewing code in the given language.",
		Arguments: []*mcp.PromptArgument{{
			Name:        "language",
			Description: "programming language of the code under review",
			Required:    true,
		}},
	}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		if info := logging.GetAuditInfo(ctx); info != nil {
			info.PromptName = PromptCodeReview
		}
		if err := s.authorize(ctx, policy.RequestContext{
			Method: "prompts/get",
			Prompt: policy.PromptContext{Name: PromptCodeReview, Arguments: req.Params.Arguments},
		}); err != nil {
			return nil, err
		}

		language := req.Params.Arguments["language"]
		return &mcp.GetPromptResult{
			Description: fmt.Sprintf("Code review for %s", language),
			Messages: []*mcp.PromptMessage{{
				Role:    "user",
				Content: &mcp.TextContent{Text: handlers.CodeReview(language)},
			}},
		}, nil
	})
}
