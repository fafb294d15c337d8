// Package mcp serves the function catalog as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"socialgap/app"
	"socialgap/domain/core"
	"socialgap/internal/report"
)

// FormatMarkdown renders results as markdown tables instead of JSON
const FormatMarkdown = report.FormatMarkdown

// Server wraps the mcp-go MCPServer with one tool per catalog function
type Server struct {
	mcp     *server.MCPServer
	service *app.Service
	logger  *zap.Logger
}

// NewServer creates the MCP server and registers every catalog function
func NewServer(name, version string, service *app.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mcp: server.NewMCPServer(
			name,
			version,
			server.WithToolCapabilities(true),
		),
		service: service,
		logger:  logger.Named("mcp"),
	}
	for _, fn := range app.Catalog() {
		s.mcp.AddTool(toolFor(fn), s.handler(fn.Name))
	}
	return s
}

// MCP returns the underlying MCPServer
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio blocks serving JSON-RPC over stdin/stdout
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func toolFor(fn app.Function) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(fn.Description),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	}
	for _, arg := range fn.Arguments {
		props := []mcp.PropertyOption{mcp.Description(arg.Description)}
		if arg.Required {
			props = append(props, mcp.Required())
		}
		switch arg.Type {
		case "integer":
			opts = append(opts, mcp.WithNumber(arg.Name, props...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(arg.Name, props...))
		case "array":
			opts = append(opts, mcp.WithArray(arg.Name, props...))
		case "object":
			opts = append(opts, mcp.WithObject(arg.Name, props...))
		default:
			opts = append(opts, mcp.WithString(arg.Name, props...))
		}
	}
	opts = append(opts, mcp.WithString("format",
		mcp.Description("json (default) or markdown"),
	))
	return mcp.NewTool(fn.Name, opts...)
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callID := core.NewCallID()
		ctx = app.WithCallID(ctx, callID)

		arguments, _ := req.Params.Arguments.(map[string]any)
		raw, err := json.Marshal(arguments)
		if err != nil {
			return nil, fmt.Errorf("failed to encode arguments: %w", err)
		}
		args, err := app.ParseArguments(raw)
		if err != nil {
			return errorResult(err)
		}

		result, err := s.service.Call(ctx, name, args)
		if err != nil {
			s.logger.Debug("tool failed", zap.String("call_id", callID.String()), zap.String("tool", name), zap.Error(err))
			return errorResult(err)
		}

		if args.String("format") == FormatMarkdown {
			if doc, ok := report.For(result); ok {
				return mcp.NewToolResultText(doc.Markdown()), nil
			}
		}
		body, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode result: %w", err)
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

// errorResult reports analysis failures in-band so the model can re-prompt
func errorResult(err error) (*mcp.CallToolResult, error) {
	body, marshalErr := json.MarshalIndent(app.NewErrorResult(err), "", "  ")
	if marshalErr != nil {
		return nil, marshalErr
	}
	result := mcp.NewToolResultText(string(body))
	result.IsError = true
	return result, nil
}
