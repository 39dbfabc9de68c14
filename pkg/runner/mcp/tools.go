package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListEpisodesTool(srv, svc)
	registerGetEpisodeTool(srv, svc)
	registerExportEpisodeTool(srv, svc)
	registerSearchQuestionsTool(srv, svc)
	registerReloadTool(srv, svc)
}

func registerListEpisodesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_episodes",
		mcp.WithDescription("List AKA episodes. Episodes without timestamps are hidden unless include_missing is set."),
		mcp.WithBoolean("include_missing",
			mcp.Description("Also list episodes that have no timestamps yet."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summaries, err := svc.ListEpisodes(ctx, request.GetBool("include_missing", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"episodes": summaries,
			"count":    len(summaries),
		})
	})
}

func registerGetEpisodeTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_episode",
		mcp.WithDescription("Get one episode with its compacted question timeline."),
		mcp.WithNumber("number",
			mcp.Required(),
			mcp.Description("Episode number."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Number int `json:"number"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.Episode(ctx, args.Number)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerExportEpisodeTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"export_episode",
		mcp.WithDescription("Render an episode's timestamps as paste-ready text, one \"time question\" per line."),
		mcp.WithNumber("number",
			mcp.Required(),
			mcp.Description("Episode number."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := svc.Export(ctx, request.GetInt("number", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	})
}

func registerSearchQuestionsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"search_questions",
		mcp.WithDescription("Find where a listener question is answered across all episodes."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Case-insensitive text to look for in the questions."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of matches, newest episodes first."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hits, err := svc.SearchQuestions(ctx, request.GetString("query", ""), request.GetInt("limit", 20))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"matches": hits,
			"count":   len(hits),
		})
	})
}

func registerReloadTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"reload_episodes",
		mcp.WithDescription("Fetch the episode list again from the analysis service."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		count, err := svc.Reload(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%d episodes loaded", count)), nil
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
