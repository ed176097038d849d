package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/idu-service/internal/core/ports"
)

const analyzeToolName = "analyze_document"

func newMCPHandler(analyzer ports.DocumentAnalyzer) http.Handler {
	srv := server.NewMCPServer("idu-service", "1.0.0", server.WithToolCapabilities(false))
	srv.AddTool(analyzeTool(), analyzeToolHandler(analyzer))
	return server.NewStreamableHTTPServer(srv, server.WithStateLess(true))
}

func analyzeTool() mcp.Tool {
	return mcp.NewTool(analyzeToolName,
		mcp.WithDescription("Classify a document, extract organizations, places, people, money amounts and dates, and summarize it."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Plain document text."),
		),
	)
}

// analyzeToolHandler reports analysis failures as tool errors so the calling
// agent sees the reason instead of a protocol failure.
func analyzeToolHandler(analyzer ports.DocumentAnalyzer) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := analyzer.Analyze(ctx, text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
