package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	genimage "promptgen/mcp"
)

func callGenerate(t *testing.T, opts options, args map[string]any) string {
	t.Helper()
	res, err := generateHandler(opts)(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: toolName, Arguments: args},
	})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	outer, err := json.Marshal([]map[string]string{{"type": "text", "text": text.Text}})
	require.NoError(t, err)
	return string(outer)
}

func TestGenerateReturnsDecodablePNG(t *testing.T) {
	out := callGenerate(t, options{width: 8, height: 4}, map[string]any{"prompt": "a cat"})

	img, err := genimage.Decode(out)
	require.NoError(t, err)
	data, err := img.Bytes()
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.Bounds().Dx())
	assert.Equal(t, 4, decoded.Bounds().Dy())
}

func TestGenerateFailMode(t *testing.T) {
	out := callGenerate(t, options{fail: true, width: 8, height: 8}, map[string]any{"prompt": "a cat"})

	_, err := genimage.Decode(out)
	assert.ErrorIs(t, err, genimage.ErrNotSuccessful)
}

func TestGenerateRequiresPrompt(t *testing.T) {
	res, err := generateHandler(options{width: 8, height: 8})(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRenderIsDeterministic(t *testing.T) {
	a, err := render("knight", 4, 4)
	require.NoError(t, err)
	b, err := render("knight", 4, 4)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = render("knight", 0, 4)
	assert.Error(t, err)
}
