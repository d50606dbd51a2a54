package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/acrolabs/counsel/pkg/chat"
	"github.com/acrolabs/counsel/pkg/schema"
)

// HandleValidate implements the counsel/validate MCP tool.
func HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	sv, errs := schema.ValidateFile(path)
	if hasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}

	text := fmt.Sprintf("✓ %s is valid (%d steps)", sv.Meta.Name, len(sv.Steps))
	if warnings := formatWarnings(errs); warnings != "" {
		text += "\nwarnings: " + warnings
	}
	return textResult(text), nil
}

// HandleSchema implements the counsel/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := schema.GenerateJSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// HandleAsk implements the counsel/ask MCP tool. The optional repayment_rate
// grounds the fallback answer the same way a completed interview would.
func HandleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return errorResult("query argument is required"), nil
	}

	var result *schema.Result
	if rate, ok := args["repayment_rate"].(float64); ok {
		result = &schema.Result{RepaymentRate: rate}
	}
	return textResult(chat.Respond(query, result)), nil
}

// HandleSummary implements the counsel/summary MCP tool.
func HandleSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	raw, _ := args["result"].(string)
	if raw == "" {
		return errorResult("result argument is required"), nil
	}

	var res schema.Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return errorResult(fmt.Sprintf("parse result: %s", err)), nil
	}
	return textResult(chat.BuildCard(&res).Markdown()), nil
}

func hasErrors(errs []*schema.ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

func formatErrors(errs []*schema.ValidationError) string {
	var msgs []string
	for _, e := range errs {
		if e.Severity == "error" {
			msgs = append(msgs, fmt.Sprintf("[%s] %s", e.Phase, e.Message))
		}
	}
	return strings.Join(msgs, "; ")
}

func formatWarnings(errs []*schema.ValidationError) string {
	var msgs []string
	for _, e := range errs {
		if e.Severity == "warning" {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
