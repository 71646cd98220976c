package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/botvision/internal/bot"
	"gopkg.in/yaml.v3"
)

// toolSteps maps MCP tool names onto step names.
var toolSteps = map[string]string{
	"click_relative": "click-relative",
	"find_text":      "find-text",
	"find_image":     "find-image",
	"click_text":     "click-text",
	"type":           "type",
}

func (s *Server) registerTools() {
	// click_relative
	s.mcp.AddTool(
		mcp.NewTool("click_relative",
			mcp.WithDescription("Find a unique anchor image on screen, pick the target instance closest to it and click it. Use when the target (an input field, a button) appears several times and only the one near a known landmark is wanted."),
			mcp.WithString("anchor", mcp.Description("Path of the anchor template image; must appear exactly once"), mcp.Required()),
			mcp.WithString("target", mcp.Description("Target template path, or the text to find when kind is text"), mcp.Required()),
			mcp.WithString("kind", mcp.Description("Target kind: image (default) or text")),
			mcp.WithNumber("max-distance", mcp.Description("Maximum distance in pixels between anchor and target centres"), mcp.Required()),
			mcp.WithNumber("confidence", mcp.Description("Minimum match confidence, 0-1 or 0-100 (default from config)")),
			mcp.WithNumber("delay", mcp.Description("Pause after the click in ms")),
			mcp.WithString("button", mcp.Description("Mouse button: left, right, middle")),
			mcp.WithBoolean("double", mcp.Description("Double-click")),
			mcp.WithBoolean("backtrack", mcp.Description("Retry over the full screen with relaxed confidence")),
			mcp.WithNumber("attempts", mcp.Description("Maximum detection attempts (default from config)")),
			mcp.WithString("region", mcp.Description("Restrict the target to x,y,w,h")),
			mcp.WithString("search-region", mcp.Description("Search the anchor only inside x,y,w,h")),
			mcp.WithNumber("offset-x", mcp.Description("Horizontal offset added to the click point")),
			mcp.WithNumber("offset-y", mcp.Description("Vertical offset added to the click point")),
			mcp.WithString("type-text", mcp.Description("Text to type after clicking")),
		),
		s.stepHandler("click_relative"),
	)

	// find_text
	s.mcp.AddTool(
		mcp.NewTool("find_text",
			mcp.WithDescription("Locate text on screen with OCR and return its centre without clicking"),
			mcp.WithString("text", mcp.Description("Text to find (case-insensitive, fuzzy)"), mcp.Required()),
			mcp.WithNumber("confidence", mcp.Description("Minimum confidence, 0-1 or 0-100")),
			mcp.WithString("region", mcp.Description("Search only inside x,y,w,h")),
		),
		s.stepHandler("find_text"),
	)

	// find_image
	s.mcp.AddTool(
		mcp.NewTool("find_image",
			mcp.WithDescription("Locate a template image on screen and return its centre without clicking"),
			mcp.WithString("image", mcp.Description("Template image path"), mcp.Required()),
			mcp.WithNumber("confidence", mcp.Description("Minimum confidence, 0-1 or 0-100")),
			mcp.WithString("region", mcp.Description("Search only inside x,y,w,h")),
		),
		s.stepHandler("find_image"),
	)

	// click_text
	s.mcp.AddTool(
		mcp.NewTool("click_text",
			mcp.WithDescription("Locate text on screen with OCR and click it"),
			mcp.WithString("text", mcp.Description("Text to click"), mcp.Required()),
			mcp.WithNumber("confidence", mcp.Description("Minimum confidence, 0-1 or 0-100")),
			mcp.WithString("region", mcp.Description("Search only inside x,y,w,h")),
			mcp.WithString("button", mcp.Description("Mouse button: left, right, middle")),
			mcp.WithBoolean("double", mcp.Description("Double-click")),
			mcp.WithNumber("delay", mcp.Description("Pause after the click in ms")),
			mcp.WithString("type-text", mcp.Description("Text to type after clicking")),
		),
		s.stepHandler("click_text"),
	)

	// type
	s.mcp.AddTool(
		mcp.NewTool("type",
			mcp.WithDescription("Type text or press a key combination at the current focus"),
			mcp.WithString("text", mcp.Description("Text to type")),
			mcp.WithString("key", mcp.Description("Key combo (e.g. 'ctrl+c', 'enter', 'tab')")),
			mcp.WithNumber("delay", mcp.Description("Delay between keystrokes in ms")),
		),
		s.stepHandler("type"),
	)
}

// stepHandler runs the step behind tool and renders its result as YAML.
func (s *Server) stepHandler(tool string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	step := toolSteps[tool]
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := request.GetArguments()

		s.runMu.Lock()
		defer s.runMu.Unlock()

		result, err := s.runner.RunStep(ctx, step, params)
		if err != nil {
			s.log.Warn("tool failed", "tool", tool, "result", result.Describe(), "error", err.Error())
			return mcp.NewToolResultError(resultToText(result)), nil
		}
		s.log.Debug("tool finished", "tool", tool, "result", result.Describe())
		return mcp.NewToolResultText(resultToText(result)), nil
	}
}

// resultToText serializes a StepResult to YAML for MCP response.
func resultToText(result bot.StepResult) string {
	b, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Sprintf("ok: %v\naction: %s\nerror: %s", result.OK, result.Action, result.Error)
	}
	return string(b)
}
