package mcp

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCaller is a scripted ToolCaller
type fakeCaller struct {
	initErr error
	callErr error
	result  *mcp.CallToolResult
	entered chan struct{} // closed when CallTool starts, if set
	release chan struct{} // CallTool waits on it, if set

	mu      sync.Mutex
	closed  bool
	prompts []string
}

func (f *fakeCaller) Initialize(context.Context, mcp.InitializeRequest) (*mcp.InitializeResult, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &mcp.InitializeResult{
		ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
		ServerInfo:      mcp.Implementation{Name: "fake-genimage", Version: "0.0.1"},
	}, nil
}

func (f *fakeCaller) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.GetString(PromptArgument, ""))
	f.mu.Unlock()

	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.result, nil
}

func (f *fakeCaller) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type countingLauncher struct {
	caller   *fakeCaller
	err      error
	launches atomic.Int32
}

func (l *countingLauncher) Launch(context.Context, ServerConfig) (ToolCaller, error) {
	l.launches.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return l.caller, nil
}

func textResult(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

func newConfiguredSession(t *testing.T, l Launcher, opts ...Option) *Session {
	t.Helper()
	s := NewSession(append([]Option{WithLauncher(l)}, opts...)...)
	require.NoError(t, s.configure(ServerConfig{Command: "genimage", Args: []string{"--stdio"}}))
	require.Equal(t, StateConfigLoaded, s.State())
	return s
}

func TestConnectTwiceLaunchesOnce(t *testing.T) {
	l := &countingLauncher{caller: &fakeCaller{}}
	s := newConfiguredSession(t, l.Launch)

	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Connect(context.Background()))

	assert.Equal(t, int32(1), l.launches.Load())
	assert.Equal(t, StateConnected, s.State())
	assert.Equal(t, "fake-genimage", s.Provider().Name)
}

func TestConcurrentConnectLaunchesOnce(t *testing.T) {
	l := &countingLauncher{caller: &fakeCaller{}}
	s := newConfiguredSession(t, l.Launch)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Connect(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), l.launches.Load())
}

func TestConnectRequiresConfiguration(t *testing.T) {
	l := &countingLauncher{caller: &fakeCaller{}}
	s := NewSession(WithLauncher(l.Launch))

	err := s.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, int32(0), l.launches.Load())
	assert.Equal(t, StateUnconfigured, s.State())
}

func TestMissingProviderFailsSessionBeforeLaunch(t *testing.T) {
	l := &countingLauncher{caller: &fakeCaller{}}
	s := NewSession(WithLauncher(l.Launch))

	err := s.LoadConfiguration(writeConfig(t, `{"mcpServers":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mcpServers.genimage")
	assert.Equal(t, StateFailed, s.State())
	assert.False(t, s.Initialized())
	assert.Contains(t, s.ErrorMessage(), "mcpServers.genimage")

	assert.Equal(t, err, s.Connect(context.Background()))
	_, invokeErr := s.Invoke(context.Background(), "cat")
	assert.ErrorIs(t, invokeErr, ErrNotReady)
	assert.Equal(t, int32(0), l.launches.Load())
}

func TestLoadConfigurationFromDocument(t *testing.T) {
	s := NewSession()
	err := s.LoadConfiguration(writeConfig(t, `{"mcpServers":{"genimage":{"command":"genimage","args":["serve"]}}}`))
	require.NoError(t, err)

	assert.Equal(t, StateConfigLoaded, s.State())
	assert.True(t, s.Initialized())
	assert.Equal(t, ServerConfig{Command: "genimage", Args: []string{"serve"}}, s.Config())
	assert.Error(t, s.LoadConfiguration(writeConfig(t, `{}`)), "configuration is loaded once")
}

func TestLaunchFailureIsTerminal(t *testing.T) {
	launchErr := errors.New("exec: \"genimage\": executable file not found in $PATH")
	l := &countingLauncher{err: launchErr}
	s := newConfiguredSession(t, l.Launch)

	err := s.Connect(context.Background())
	require.Error(t, err)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.ErrorIs(t, err, launchErr)
	assert.Contains(t, err.Error(), launchErr.Error())
	assert.Equal(t, StateFailed, s.State())

	assert.Error(t, s.Connect(context.Background()))
	assert.Equal(t, int32(1), l.launches.Load())
}

func TestHandshakeFailureClosesClient(t *testing.T) {
	caller := &fakeCaller{initErr: errors.New("unsupported protocol version")}
	l := &countingLauncher{caller: caller}
	s := newConfiguredSession(t, l.Launch)

	err := s.Connect(context.Background())
	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.True(t, caller.closed)
	assert.Equal(t, StateFailed, s.State())
}

func TestStdioLauncherMissingBinary(t *testing.T) {
	s := NewSession(WithConnectTimeout(5 * time.Second))
	require.NoError(t, s.configure(ServerConfig{Command: "/nonexistent/promptgen-genimage-test"}))

	err := s.Connect(context.Background())
	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, StateFailed, s.State())
}

func TestInvokeBeforeConnectIsNotReady(t *testing.T) {
	l := &countingLauncher{caller: &fakeCaller{result: textResult("x")}}
	s := newConfiguredSession(t, l.Launch)

	out, err := s.Invoke(context.Background(), "cat")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Empty(t, out)
	assert.Equal(t, StateConfigLoaded, s.State())
}

func TestInvokeSerializesContent(t *testing.T) {
	caller := &fakeCaller{result: textResult(`{"success":true,"output":"QQ=="}`)}
	s := newConfiguredSession(t, (&countingLauncher{caller: caller}).Launch)
	require.NoError(t, s.Connect(context.Background()))

	out, err := s.Invoke(context.Background(), "a cat")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"text","text":"{\"success\":true,\"output\":\"QQ==\"}"}]`, out)
	assert.Equal(t, []string{"a cat"}, caller.prompts)
	assert.Equal(t, StateIdle, s.State())

	img, err := Decode(out)
	require.NoError(t, err)
	data, err := img.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x41}, data)
}

func TestInvokeCallErrorReturnsToIdle(t *testing.T) {
	caller := &fakeCaller{callErr: errors.New("broken pipe")}
	s := newConfiguredSession(t, (&countingLauncher{caller: caller}).Launch)
	require.NoError(t, s.Connect(context.Background()))

	_, err := s.Invoke(context.Background(), "cat")
	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, StateIdle, s.State())
	assert.Contains(t, s.ErrorMessage(), "broken pipe")

	caller.callErr = nil
	caller.result = textResult("ok")
	_, err = s.Invoke(context.Background(), "cat")
	assert.NoError(t, err)
}

func TestInvokeRejectsConcurrentCall(t *testing.T) {
	caller := &fakeCaller{
		result:  textResult("ok"),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newConfiguredSession(t, (&countingLauncher{caller: caller}).Launch)
	require.NoError(t, s.Connect(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := s.Invoke(context.Background(), "first")
		done <- err
	}()

	<-caller.entered
	assert.Equal(t, StateInvoking, s.State())

	_, err := s.Invoke(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(caller.release)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"first"}, caller.prompts)
	assert.Equal(t, StateIdle, s.State())
}

func TestInvokeHonorsCallTimeout(t *testing.T) {
	caller := &fakeCaller{release: make(chan struct{})}
	s := newConfiguredSession(t, (&countingLauncher{caller: caller}).Launch, WithCallTimeout(20*time.Millisecond))
	require.NoError(t, s.Connect(context.Background()))

	_, err := s.Invoke(context.Background(), "slow")
	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateIdle, s.State())
}

func TestCloseReleasesClient(t *testing.T) {
	caller := &fakeCaller{result: textResult("ok")}
	s := newConfiguredSession(t, (&countingLauncher{caller: caller}).Launch)
	require.NoError(t, s.Connect(context.Background()))

	require.NoError(t, s.Close())
	assert.True(t, caller.closed)
	assert.Equal(t, StateFailed, s.State())
	assert.ErrorIs(t, s.LastError(), ErrClosed)

	_, err := s.Invoke(context.Background(), "cat")
	assert.ErrorIs(t, err, ErrNotReady)
}

func inProcessLauncher(srv *server.MCPServer) Launcher {
	return func(context.Context, ServerConfig) (ToolCaller, error) {
		c, err := client.NewInProcessClient(srv)
		if err != nil {
			return nil, err
		}
		if err := c.Start(context.Background()); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func TestSessionAgainstInProcessServer(t *testing.T) {
	var got atomic.Value
	srv := server.NewMCPServer("genimage", "0.1.0", server.WithToolCapabilities(false))
	srv.AddTool(
		mcp.NewTool(ToolName,
			mcp.WithDescription("Generate an image from a prompt"),
			mcp.WithString(PromptArgument, mcp.Required()),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			got.Store(req.GetString(PromptArgument, ""))
			return mcp.NewToolResultText(`{"success":true,"output":"QQ=="}`), nil
		},
	)

	s := newConfiguredSession(t, inProcessLauncher(srv))
	require.NoError(t, s.Connect(context.Background()))
	defer s.Close()

	assert.Equal(t, "genimage", s.Provider().Name)

	out, err := s.Invoke(context.Background(), "1girl, long hair")
	require.NoError(t, err)
	assert.Equal(t, "1girl, long hair", got.Load())

	img, err := Decode(out)
	require.NoError(t, err)
	data, err := img.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x41}, data)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "invoking", StateInvoking.String())
	assert.True(t, StateIdle.Ready())
	assert.False(t, StateFailed.Ready())
}
