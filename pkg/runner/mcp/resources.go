package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerEpisodesResource(srv, svc)
	registerEpisodeTemplate(srv, svc)
}

func registerEpisodesResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"akats://episodes",
		"Episodes",
		mcp.WithResourceDescription("Every AKA episode with its analysis status."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		summaries, err := svc.ListEpisodes(ctx, true)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"episodes": summaries,
			"count":    len(summaries),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerEpisodeTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"akats://episodes/{number}",
		"Episode Timeline",
		mcp.WithTemplateDescription("Compacted question timestamps for one episode."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		raw := argString(request.Params.Arguments["number"])
		number, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid episode number %q", raw)
		}

		dto, err := svc.Episode(ctx, number)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"episode": dto})
	})
}

// argString reads a URI template variable, which arrives either as a
// string or as a list of strings.
func argString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
