// Package mcp exposes counsel as MCP tools so agent hosts can validate
// survey documents, export the schema, and query the canned response table.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server with counsel tools registered.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"counsel",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("counsel/validate",
			mcp.WithDescription("Validate a counsel survey YAML document"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the survey YAML file")),
		),
		HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("counsel/schema",
			mcp.WithDescription("Export the survey document JSON Schema"),
		),
		HandleSchema,
	)

	s.AddTool(
		mcp.NewTool("counsel/ask",
			mcp.WithDescription("Answer a debt-rehabilitation follow-up question from the canned response table"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Free-text question (Korean)")),
			mcp.WithNumber("repayment_rate", mcp.Description("Estimated repayment rate in percent, used when no keyword matches")),
		),
		HandleAsk,
	)

	s.AddTool(
		mcp.NewTool("counsel/summary",
			mcp.WithDescription("Format a computed result object into the repayment-plan summary card"),
			mcp.WithString("result", mcp.Required(), mcp.Description("Result object as JSON")),
		),
		HandleSummary,
	)

	return s
}
