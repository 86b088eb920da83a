package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bootman/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so assistants can read and
change the deployment settings, start and stop the containers, and check for
new releases. Installing an update is left to the dashboard or
'bootman update install'.

The server speaks JSON-RPC over stdio unless --port is given, in which case
it serves the streamable HTTP transport.

Examples:
  bootman mcp serve
  bootman mcp serve --port 8080
  bootman mcp serve --port 8080 --host 0.0.0.0

Assistant configuration:
  {
    "mcpServers": {
      "bootman": {
        "command": "/path/to/bootman",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("host", "127.0.0.1", "HTTP listen address")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Configuration: configService,
		Deployment:    deploymentService,
		Update:        updateService,
	}

	server, err := mcp.NewServer(ports, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if port > 0 {
		host, _ := cmd.Flags().GetString("host")
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		newPrinter(cmd.OutOrStdout()).Step("MCP server listening on http://%s", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
