package cmd

import (
	"fmt"

	"github.com/mj1618/botvision/internal/bot"
	"github.com/mj1618/botvision/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing botvision tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes click_relative,
find_text, find_image, click_text and type as tools. Tool calls run one at a
time against a single session.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  botvision serve
  botvision serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	session, err := bot.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	srv := server.New(session, log.With("component", "mcp"))
	return srv.Serve(server.Config{Transport: transport, Port: port})
}
