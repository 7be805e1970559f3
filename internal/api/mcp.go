package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/shopwatch/internal/storage"
	"github.com/kalambet/shopwatch/internal/tracker"
)

// mcpUserID identifies tool calls that arrive without an explicit user, e.g.
// from a local agent session rather than the LINE channel.
const mcpUserID = "mcp"

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store   *storage.Store
	Tracker *tracker.Service
}

// NewMCPServer creates an MCP server exposing the price search and tracking
// operations as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"shopwatch",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("shopwatch: price comparison and price-drop tracking across Taiwanese shopping platforms."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("query_price",
			mcp.WithDescription("Search shopping platforms for a product and return the price comparison."),
			mcp.WithString("product", mcp.Description("Product name to search for"), mcp.Required()),
			mcp.WithString("user_id", mcp.Description("User whose filter preferences apply (optional)")),
		),
		mcpQueryPrice(deps),
	)

	s.AddTool(
		mcp.NewTool("track_product",
			mcp.WithDescription("Create or update a price tracker that notifies when the product drops to the target price."),
			mcp.WithString("product", mcp.Description("Product name to track"), mcp.Required()),
			mcp.WithNumber("target_price", mcp.Description("Notify when the lowest price is at or below this NTD amount"), mcp.Required()),
			mcp.WithString("user_id", mcp.Description("Owner of the tracker (optional)")),
		),
		mcpTrackProduct(deps),
	)

	s.AddTool(
		mcp.NewTool("list_trackers",
			mcp.WithDescription("List a user's active price trackers."),
			mcp.WithString("user_id", mcp.Description("Owner of the trackers (optional)")),
		),
		mcpListTrackers(deps),
	)

	s.AddTool(
		mcp.NewTool("set_preference",
			mcp.WithDescription("Toggle whether accessory offers are included in search results."),
			mcp.WithBoolean("allow_accessories", mcp.Description("Include accessories when true"), mcp.Required()),
			mcp.WithString("user_id", mcp.Description("User to update (optional)")),
		),
		mcpSetPreference(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"shopwatch://trackers",
			"Active Trackers",
			mcp.WithResourceDescription("All active price trackers as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceTrackers(deps),
	)

	return s
}

func mcpQueryPrice(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		product, err := req.RequireString("product")
		if err != nil {
			return mcpError("product is required"), nil
		}
		userID := req.GetString("user_id", mcpUserID)

		return mcpText(deps.Tracker.QueryPrice(ctx, userID, product)), nil
	}
}

func mcpTrackProduct(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		product, err := req.RequireString("product")
		if err != nil {
			return mcpError("product is required"), nil
		}
		target, err := req.RequireFloat("target_price")
		if err != nil {
			return mcpError("target_price is required"), nil
		}
		userID := req.GetString("user_id", mcpUserID)

		return mcpText(deps.Tracker.Track(ctx, userID, product, int(target))), nil
	}
}

func mcpListTrackers(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID := req.GetString("user_id", mcpUserID)
		return mcpText(deps.Tracker.List(userID)), nil
	}
}

func mcpSetPreference(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		allow, err := req.RequireBool("allow_accessories")
		if err != nil {
			return mcpError("allow_accessories is required"), nil
		}
		userID := req.GetString("user_id", mcpUserID)

		if err := deps.Store.SetAllowAccessories(userID, allow); err != nil {
			return mcpError(fmt.Sprintf("failed to set preference: %v", err)), nil
		}
		if allow {
			return mcpText("accessory offers will be included in search results"), nil
		}
		return mcpText("accessory offers will be filtered from search results"), nil
	}
}

func mcpResourceTrackers(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		trackers, err := deps.Store.ListActiveTrackers()
		if err != nil {
			return nil, fmt.Errorf("failed to list trackers: %w", err)
		}

		b, err := json.Marshal(trackers)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal trackers: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
