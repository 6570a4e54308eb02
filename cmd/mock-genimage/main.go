// Command mock-genimage is a stdio MCP server exposing generate_image. It
// renders a gradient PNG for every prompt and answers in the genimage
// envelope format, which makes local end-to-end runs possible without a real
// provider. Point mcpServers.genimage.command at the built binary.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

const (
	serverName    = "genimage"
	serverVersion = "0.1.0"
	toolName      = "generate_image"
)

type options struct {
	fail   bool
	width  int
	height int
}

// envelope is the document carried in the text content of a result
type envelope struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

func main() {
	var opts options
	cmd := &cobra.Command{
		Use:   "mock-genimage",
		Short: "Serve a fake generate_image tool over stdio",
		RunE: func(*cobra.Command, []string) error {
			return server.ServeStdio(newServer(opts))
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&opts.fail, "fail", false, "answer every call with success=false")
	cmd.Flags().IntVar(&opts.width, "width", 64, "image width")
	cmd.Flags().IntVar(&opts.height, "height", 64, "image height")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServer(opts options) *server.MCPServer {
	srv := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))
	srv.AddTool(
		mcp.NewTool(toolName,
			mcp.WithDescription("Generate an image from a text prompt"),
			mcp.WithString("prompt", mcp.Required(), mcp.Description("Image description")),
		),
		generateHandler(opts),
	)
	return srv
}

func generateHandler(opts options) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prompt, err := req.RequireString("prompt")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		env := envelope{Success: true}
		if opts.fail {
			env = envelope{Error: "generation disabled"}
		} else {
			data, err := render(prompt, opts.width, opts.height)
			if err != nil {
				env = envelope{Error: err.Error()}
			} else {
				env.Output = base64.StdEncoding.EncodeToString(data)
			}
		}

		text, err := json.Marshal(env)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(text)), nil
	}
}

// render draws a gradient whose colors are derived from the prompt
func render(prompt string, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", width, height)
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	sum := h.Sum32()
	r, g, b := uint8(sum>>16), uint8(sum>>8), uint8(sum)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: r ^ uint8(x*255/width),
				G: g ^ uint8(y*255/height),
				B: b,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
