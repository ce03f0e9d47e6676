package apiv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ProcessRunnerService_Start_FullMethodName     = "/childproc.v1.ProcessRunnerService/Start"
	ProcessRunnerService_Stop_FullMethodName      = "/childproc.v1.ProcessRunnerService/Stop"
	ProcessRunnerService_Status_FullMethodName    = "/childproc.v1.ProcessRunnerService/Status"
	ProcessRunnerService_GetOutput_FullMethodName = "/childproc.v1.ProcessRunnerService/GetOutput"
	ProcessRunnerService_Cmdline_FullMethodName   = "/childproc.v1.ProcessRunnerService/Cmdline"
)

// ProcessRunnerServiceClient is the client API for the process runner.
type ProcessRunnerServiceClient interface {
	Start(ctx context.Context, in *StartRequest, opts ...grpc.CallOption) (*StartResponse, error)
	Stop(ctx context.Context, in *StopRequest, opts ...grpc.CallOption) (*StopResponse, error)
	Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error)
	GetOutput(ctx context.Context, in *GetOutputRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[GetOutputResponse], error)
	Cmdline(ctx context.Context, in *CmdlineRequest, opts ...grpc.CallOption) (*CmdlineResponse, error)
}

type processRunnerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewProcessRunnerServiceClient returns a client that speaks the JSON codec
// on every call.
func NewProcessRunnerServiceClient(cc grpc.ClientConnInterface) ProcessRunnerServiceClient {
	return &processRunnerServiceClient{cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.StaticMethod(), grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *processRunnerServiceClient) Start(ctx context.Context, in *StartRequest, opts ...grpc.CallOption) (*StartResponse, error) {
	out := new(StartResponse)
	if err := c.cc.Invoke(ctx, ProcessRunnerService_Start_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *processRunnerServiceClient) Stop(ctx context.Context, in *StopRequest, opts ...grpc.CallOption) (*StopResponse, error) {
	out := new(StopResponse)
	if err := c.cc.Invoke(ctx, ProcessRunnerService_Stop_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *processRunnerServiceClient) Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	out := new(StatusResponse)
	if err := c.cc.Invoke(ctx, ProcessRunnerService_Status_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *processRunnerServiceClient) GetOutput(ctx context.Context, in *GetOutputRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[GetOutputResponse], error) {
	stream, err := c.cc.NewStream(ctx, &ProcessRunnerService_ServiceDesc.Streams[0], ProcessRunnerService_GetOutput_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[GetOutputRequest, GetOutputResponse]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *processRunnerServiceClient) Cmdline(ctx context.Context, in *CmdlineRequest, opts ...grpc.CallOption) (*CmdlineResponse, error) {
	out := new(CmdlineResponse)
	if err := c.cc.Invoke(ctx, ProcessRunnerService_Cmdline_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessRunnerServiceServer is the server API for the process runner.
// Implementations must embed UnimplementedProcessRunnerServiceServer.
type ProcessRunnerServiceServer interface {
	Start(context.Context, *StartRequest) (*StartResponse, error)
	Stop(context.Context, *StopRequest) (*StopResponse, error)
	Status(context.Context, *StatusRequest) (*StatusResponse, error)
	GetOutput(*GetOutputRequest, grpc.ServerStreamingServer[GetOutputResponse]) error
	Cmdline(context.Context, *CmdlineRequest) (*CmdlineResponse, error)
	mustEmbedUnimplementedProcessRunnerServiceServer()
}

type UnimplementedProcessRunnerServiceServer struct{}

func (UnimplementedProcessRunnerServiceServer) Start(context.Context, *StartRequest) (*StartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Start not implemented")
}
func (UnimplementedProcessRunnerServiceServer) Stop(context.Context, *StopRequest) (*StopResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Stop not implemented")
}
func (UnimplementedProcessRunnerServiceServer) Status(context.Context, *StatusRequest) (*StatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Status not implemented")
}
func (UnimplementedProcessRunnerServiceServer) GetOutput(*GetOutputRequest, grpc.ServerStreamingServer[GetOutputResponse]) error {
	return status.Error(codes.Unimplemented, "method GetOutput not implemented")
}
func (UnimplementedProcessRunnerServiceServer) Cmdline(context.Context, *CmdlineRequest) (*CmdlineResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Cmdline not implemented")
}
func (UnimplementedProcessRunnerServiceServer) mustEmbedUnimplementedProcessRunnerServiceServer() {}

// RegisterProcessRunnerServiceServer registers srv on s.
func RegisterProcessRunnerServiceServer(s grpc.ServiceRegistrar, srv ProcessRunnerServiceServer) {
	s.RegisterService(&ProcessRunnerService_ServiceDesc, srv)
}

func unaryHandler[Req any](method string, call func(ProcessRunnerServiceServer, context.Context, *Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ProcessRunnerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ProcessRunnerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func getOutputHandler(srv any, stream grpc.ServerStream) error {
	in := new(GetOutputRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ProcessRunnerServiceServer).GetOutput(in, &grpc.GenericServerStream[GetOutputRequest, GetOutputResponse]{ServerStream: stream})
}

var ProcessRunnerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "childproc.v1.ProcessRunnerService",
	HandlerType: (*ProcessRunnerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Start",
			Handler: unaryHandler(ProcessRunnerService_Start_FullMethodName, func(s ProcessRunnerServiceServer, ctx context.Context, in *StartRequest) (any, error) {
				return s.Start(ctx, in)
			}),
		},
		{
			MethodName: "Stop",
			Handler: unaryHandler(ProcessRunnerService_Stop_FullMethodName, func(s ProcessRunnerServiceServer, ctx context.Context, in *StopRequest) (any, error) {
				return s.Stop(ctx, in)
			}),
		},
		{
			MethodName: "Status",
			Handler: unaryHandler(ProcessRunnerService_Status_FullMethodName, func(s ProcessRunnerServiceServer, ctx context.Context, in *StatusRequest) (any, error) {
				return s.Status(ctx, in)
			}),
		},
		{
			MethodName: "Cmdline",
			Handler: unaryHandler(ProcessRunnerService_Cmdline_FullMethodName, func(s ProcessRunnerServiceServer, ctx context.Context, in *CmdlineRequest) (any, error) {
				return s.Cmdline(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "GetOutput",
			Handler:       getOutputHandler,
			ServerStreams: true,
		},
	},
	Metadata: "childproc/v1/service",
}
