package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ashureev/careerdesk/internal/advice"
	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/domain"
	"github.com/ashureev/careerdesk/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ProfileResourceURI addresses the profile resource.
const ProfileResourceURI = "career://profile"

// NewMCPServer exposes the career data as MCP tools and resources.
func (h *Handler) NewMCPServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"careerdesk",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("careerdesk: personal career dashboard with skills, goals and plan export."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_skills",
			mcp.WithDescription("List the user's skills with their levels (1-5)."),
		),
		h.mcpListSkills,
	)

	s.AddTool(
		mcp.NewTool("add_skill",
			mcp.WithDescription("Add a skill to the user's profile."),
			mcp.WithString("name", mcp.Description("Skill name"), mcp.Required()),
			mcp.WithNumber("level", mcp.Description("Self-assessed level from 1 to 5 (default 1)")),
			mcp.WithString("category", mcp.Description("Category label, e.g. Teknik")),
		),
		h.mcpAddSkill,
	)

	s.AddTool(
		mcp.NewTool("list_goals",
			mcp.WithDescription("List the user's career goals and their status."),
		),
		h.mcpListGoals,
	)

	s.AddTool(
		mcp.NewTool("add_goal",
			mcp.WithDescription("Add a pending career goal."),
			mcp.WithString("title", mcp.Description("Goal title"), mcp.Required()),
			mcp.WithString("description", mcp.Description("Longer description")),
			mcp.WithString("deadline", mcp.Description("Free-text deadline")),
		),
		h.mcpAddGoal,
	)

	s.AddTool(
		mcp.NewTool("set_goal_status",
			mcp.WithDescription("Mark a goal pending or completed."),
			mcp.WithNumber("id", mcp.Description("Goal id"), mcp.Required()),
			mcp.WithString("status", mcp.Description("pending or completed"), mcp.Required()),
		),
		h.mcpSetGoalStatus,
	)

	s.AddTool(
		mcp.NewTool("export_plan",
			mcp.WithDescription("Create a career plan page in the connected Notion workspace."),
			mcp.WithString("title", mcp.Description("Page title")),
			mcp.WithString("plan_content", mcp.Description("Plan text"), mcp.Required()),
		),
		h.mcpExportPlan,
	)

	s.AddResource(
		mcp.NewResource(
			ProfileResourceURI,
			"Career Profile",
			mcp.WithResourceDescription("Profile fields and integration status as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		h.mcpResourceProfile,
	)

	return s
}

func (h *Handler) mcpListSkills(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skills, err := h.repo.ListSkills(ctx)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to list skills: %v", err)), nil
	}
	return mcpJSON(skills), nil
}

func (h *Handler) mcpAddSkill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcpError("name is required"), nil
	}
	skill := domain.Skill{
		Name:     name,
		Level:    req.GetInt("level", domain.MinSkillLevel),
		Category: req.GetString("category", ""),
	}
	skill.Normalize()
	if err := skill.Validate(); err != nil {
		return mcpError(apperr.MessageOf(err)), nil
	}

	id, err := h.repo.CreateSkill(ctx, skill)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to save skill: %v", err)), nil
	}
	return mcpText(fmt.Sprintf("Added skill %d: %s (%d/5)", id, skill.Name, skill.Level)), nil
}

func (h *Handler) mcpListGoals(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goals, err := h.repo.ListGoals(ctx)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to list goals: %v", err)), nil
	}
	return mcpJSON(goals), nil
}

func (h *Handler) mcpAddGoal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcpError("title is required"), nil
	}
	goal := domain.Goal{
		Title:       title,
		Description: req.GetString("description", ""),
		Deadline:    req.GetString("deadline", ""),
	}
	goal.Normalize()
	if err := goal.Validate(); err != nil {
		return mcpError(apperr.MessageOf(err)), nil
	}

	id, err := h.repo.CreateGoal(ctx, goal)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to save goal: %v", err)), nil
	}
	return mcpText(fmt.Sprintf("Added goal %d: %s", id, goal.Title)), nil
}

func (h *Handler) mcpSetGoalStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetInt("id", 0)
	if id <= 0 {
		return mcpError("id is required"), nil
	}
	raw, err := req.RequireString("status")
	if err != nil {
		return mcpError("status is required"), nil
	}
	status, err := domain.ParseGoalStatus(raw)
	if err != nil {
		return mcpError(apperr.MessageOf(err)), nil
	}

	if err := h.repo.SetGoalStatus(ctx, int64(id), status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcpError(fmt.Sprintf("goal %d not found", id)), nil
		}
		return mcpError(fmt.Sprintf("failed to update goal: %v", err)), nil
	}
	return mcpText(fmt.Sprintf("Goal %d is %s", id, status)), nil
}

func (h *Handler) mcpExportPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("plan_content")
	if err != nil {
		return mcpError("plan_content is required"), nil
	}
	page := advice.NotionPage{
		Title:       req.GetString("title", ""),
		PlanContent: content,
	}

	token, err := h.profiles.Token(ctx, domain.ServiceNotion)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to read profile: %v", err)), nil
	}
	res := h.exportPlan(ctx, token, page)
	if res.Error != "" {
		return mcpError("export failed: " + res.Error), nil
	}
	return mcpText(string(res.Response)), nil
}

func (h *Handler) mcpResourceProfile(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	p, err := h.profiles.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	b, err := json.Marshal(profileResponse{Profile: p, Connections: h.connectors.StatusesFor(p)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func mcpJSON(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcpText(string(b))
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
