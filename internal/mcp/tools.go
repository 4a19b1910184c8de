package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/jacbridge/internal/annotate"
	"github.com/mvp-joe/jacbridge/internal/diagnostic"
	"github.com/mvp-joe/jacbridge/internal/document"
	"github.com/mvp-joe/jacbridge/internal/resolver"
	"github.com/spf13/afero"
)

// Bridge is the part of bridge.Bridge the tools use.
type Bridge interface {
	Resolve(documentPath, moduleName string) (string, bool)
	Explain(documentPath, moduleName string) []resolver.Candidate
	AnnotateDocument(ctx context.Context, doc document.Document) []annotate.Annotation
	Suppress(doc document.Document, diags []diagnostic.Diagnostic) []diagnostic.Diagnostic
}

// ResolveResponse is the jac_resolve result.
type ResolveResponse struct {
	Module     string               `json:"module"`
	Resolved   bool                 `json:"resolved"`
	Target     string               `json:"target,omitempty"`
	Candidates []resolver.Candidate `json:"candidates,omitempty"`
}

// AnnotateResponse is the jac_annotate result.
type AnnotateResponse struct {
	URI         string                `json:"uri"`
	Annotations []annotate.Annotation `json:"annotations"`
	Total       int                   `json:"total"`
}

// SuppressResponse is the jac_suppress result.
type SuppressResponse struct {
	URI        string                  `json:"uri"`
	Overrides  []diagnostic.Diagnostic `json:"overrides"`
	Suppressed int                     `json:"suppressed"`
}

// AddJacResolveTool registers the jac_resolve tool with an MCP server.
func AddJacResolveTool(s *server.MCPServer, b Bridge) {
	tool := mcp.NewTool(
		"jac_resolve",
		mcp.WithDescription("Check whether a Python import names a Jac module in the workspace. Returns the resolved .jac file, or the probed search path when explain is set."),
		mcp.WithString("document_path",
			mcp.Required(),
			mcp.Description("Absolute path of the Python file containing the import")),
		mcp.WithString("module",
			mcp.Required(),
			mcp.Description("Dotted module name as written in the import (e.g., 'agents.planner')")),
		mcp.WithBoolean("explain",
			mcp.Description("Include every search-path candidate with its probe status (default: false)")),
	)

	s.AddTool(tool, createJacResolveHandler(b))
}

func createJacResolveHandler(b Bridge) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		docPath, err := parseStringArg(argsMap, "document_path", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		module, err := parseStringArg(argsMap, "module", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		target, ok := b.Resolve(docPath, module)
		response := &ResolveResponse{Module: module, Resolved: ok, Target: target}
		if parseBoolArg(argsMap, "explain", false) {
			response.Candidates = b.Explain(docPath, module)
		}
		return marshalToolResponse(response)
	}
}

// AddJacAnnotateTool registers the jac_annotate tool with an MCP server.
// Documents are read through fsys unless the caller passes their text.
func AddJacAnnotateTool(s *server.MCPServer, b Bridge, fsys afero.Fs) {
	tool := mcp.NewTool(
		"jac_annotate",
		mcp.WithDescription("List the import references in a Python file that resolve to Jac modules, with line, column and target file for each."),
		mcp.WithString("document_path",
			mcp.Required(),
			mcp.Description("Absolute path of the Python file")),
		mcp.WithString("text",
			mcp.Description("Current buffer contents. When omitted the file is read from disk.")),
	)

	s.AddTool(tool, createJacAnnotateHandler(b, fsys))
}

func createJacAnnotateHandler(b Bridge, fsys afero.Fs) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		doc, errResult := documentArgument(argsMap, fsys, true)
		if errResult != nil {
			return errResult, nil
		}

		annotations := b.AnnotateDocument(ctx, doc)
		if annotations == nil {
			annotations = []annotate.Annotation{}
		}
		return marshalToolResponse(&AnnotateResponse{
			URI:         doc.URI,
			Annotations: annotations,
			Total:       len(annotations),
		})
	}
}

// AddJacSuppressTool registers the jac_suppress tool with an MCP server.
func AddJacSuppressTool(s *server.MCPServer, b Bridge) {
	tool := mcp.NewTool(
		"jac_suppress",
		mcp.WithDescription("Given analyzer diagnostics for a Python file, return the informational overrides for unresolved-import diagnostics that actually refer to Jac modules."),
		mcp.WithString("document_path",
			mcp.Required(),
			mcp.Description("Absolute path of the Python file the diagnostics belong to")),
		mcp.WithArray("diagnostics",
			mcp.Required(),
			mcp.Description("LSP diagnostics as published by the analyzer: objects with range, severity, source, message and optional code")),
	)

	s.AddTool(tool, createJacSuppressHandler(b))
}

func createJacSuppressHandler(b Bridge) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		doc, errResult := documentArgument(argsMap, nil, false)
		if errResult != nil {
			return errResult, nil
		}

		if _, ok := argsMap["diagnostics"]; !ok {
			return mcp.NewToolResultError("diagnostics parameter is required"), nil
		}
		var diags []diagnostic.Diagnostic
		if err := bindArgument(argsMap, "diagnostics", &diags); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		overrides := b.Suppress(doc, diags)
		if overrides == nil {
			overrides = []diagnostic.Diagnostic{}
		}
		return marshalToolResponse(&SuppressResponse{
			URI:        doc.URI,
			Overrides:  overrides,
			Suppressed: len(overrides),
		})
	}
}

// documentArgument builds a document from document_path and optional text. When readText
// is set and no text was passed, the file is read through fsys.
func documentArgument(argsMap map[string]interface{}, fsys afero.Fs, readText bool) (document.Document, *mcp.CallToolResult) {
	docPath, err := parseStringArg(argsMap, "document_path", true)
	if err != nil {
		return document.Document{}, mcp.NewToolResultError(err.Error())
	}
	text, err := parseStringArg(argsMap, "text", false)
	if err != nil {
		return document.Document{}, mcp.NewToolResultError(err.Error())
	}

	if readText && text == "" {
		data, err := afero.ReadFile(fsys, docPath)
		if err != nil {
			return document.Document{}, mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", docPath, err))
		}
		text = string(data)
	}

	return document.Document{
		URI:  document.PathToURI(docPath),
		Text: text,
	}, nil
}
