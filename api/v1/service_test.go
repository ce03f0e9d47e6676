package apiv1

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeServer struct {
	UnimplementedProcessRunnerServiceServer
	started *StartRequest
}

func (f *fakeServer) Start(_ context.Context, in *StartRequest) (*StartResponse, error) {
	f.started = in
	code := int32(0)
	return &StartResponse{
		ProcessIdentifier: "id-1",
		Status:            &ProcessStatus{Pid: 42, State: ProcessStateRunning, ExitCode: &code, StartTime: time.Unix(100, 0).UTC()},
	}, nil
}

func (f *fakeServer) GetOutput(in *GetOutputRequest, stream grpc.ServerStreamingServer[GetOutputResponse]) error {
	if in.ProcessIdentifier != "id-1" {
		return status.Error(codes.NotFound, "no such process")
	}
	for _, msg := range []*GetOutputResponse{
		{Type: OutputTypeStdout, Data: []byte("out\n")},
		{Type: OutputTypeStderr, Data: []byte{0, 1, 2, 0xff}},
	} {
		if err := stream.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func newClient(t *testing.T, srv ProcessRunnerServiceServer) ProcessRunnerServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterProcessRunnerServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewProcessRunnerServiceClient(conn)
}

func TestService_UnaryOverJSON(t *testing.T) {
	srv := &fakeServer{}
	client := newClient(t, srv)

	resp, err := client.Start(context.Background(), &StartRequest{Command: "sleep", Args: []string{"1", ""}})
	require.NoError(t, err)
	assert.Equal(t, "id-1", resp.GetProcessIdentifier())
	assert.Equal(t, int32(42), resp.GetStatus().GetPid())
	assert.Equal(t, ProcessStateRunning, resp.Status.GetState())
	code, ok := resp.Status.GetExitCode()
	assert.True(t, ok)
	assert.Equal(t, int32(0), code)
	assert.True(t, resp.Status.StartTime.Equal(time.Unix(100, 0)))
	assert.Nil(t, resp.Status.EndTime)

	require.NotNil(t, srv.started)
	assert.Equal(t, []string{"1", ""}, srv.started.Args)
}

func TestService_Stream(t *testing.T) {
	client := newClient(t, &fakeServer{})

	stream, err := client.GetOutput(context.Background(), &GetOutputRequest{ProcessIdentifier: "id-1"})
	require.NoError(t, err)

	var got []*GetOutputResponse
	for {
		msg, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, msg)
	}
	require.Len(t, got, 2)
	assert.Equal(t, OutputTypeStdout, got[0].GetType())
	assert.Equal(t, "out\n", string(got[0].GetData()))
	assert.Equal(t, []byte{0, 1, 2, 0xff}, got[1].GetData())

	stream, err = client.GetOutput(context.Background(), &GetOutputRequest{ProcessIdentifier: "other"})
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestService_Unimplemented(t *testing.T) {
	client := newClient(t, &fakeServer{})

	_, err := client.Cmdline(context.Background(), &CmdlineRequest{Pid: 1})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
	_, err = client.Stop(context.Background(), &StopRequest{ProcessIdentifier: "id-1"})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestGettersOnNil(t *testing.T) {
	var st *ProcessStatus
	assert.Equal(t, ProcessStateUnspecified, st.GetState())
	_, ok := st.GetExitCode()
	assert.False(t, ok)
	var resp *StatusResponse
	assert.Nil(t, resp.GetProcess())
	assert.Empty(t, resp.GetProcess().GetCommand())
	assert.Nil(t, resp.GetStatus())
	var started *StartResponse
	assert.Empty(t, started.GetProcessIdentifier())
	assert.Nil(t, started.GetStatus())
	assert.Equal(t, int32(0), started.GetStatus().GetPid())
}
