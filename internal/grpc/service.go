package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "subtirrent.v1.SubtitleService"

const (
	resolveSubtitlesMethod = "/" + ServiceName + "/ResolveSubtitles"
	extractSubtitleMethod  = "/" + ServiceName + "/ExtractSubtitle"
)

// ContentTypeHeader is the response header metadata key carrying the subtitle MIME type.
const ContentTypeHeader = "x-subtitle-content-type"

// SubtitleServiceServer is the server API for the subtitle service.
type SubtitleServiceServer interface {
	ResolveSubtitles(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExtractSubtitle(*wrapperspb.StringValue, ExtractSubtitleServer) error
}

// ExtractSubtitleServer is the server side of the ExtractSubtitle stream.
type ExtractSubtitleServer interface {
	Send(*wrapperspb.BytesValue) error
	grpc.ServerStream
}

type extractSubtitleServer struct {
	grpc.ServerStream
}

func (x *extractSubtitleServer) Send(m *wrapperspb.BytesValue) error {
	return x.ServerStream.SendMsg(m)
}

func resolveSubtitlesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SubtitleServiceServer).ResolveSubtitles(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: resolveSubtitlesMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SubtitleServiceServer).ResolveSubtitles(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func extractSubtitleHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SubtitleServiceServer).ExtractSubtitle(in, &extractSubtitleServer{stream})
}

// SubtitleServiceDesc describes the subtitle service over well-known protobuf types.
var SubtitleServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SubtitleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ResolveSubtitles",
			Handler:    resolveSubtitlesHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "ExtractSubtitle",
			Handler:       extractSubtitleHandler,
			ServerStreams: true,
		},
	},
	Metadata: "subtirrent/v1/subtitle_service.proto",
}

// RegisterSubtitleServiceServer registers srv on the given registrar.
func RegisterSubtitleServiceServer(s grpc.ServiceRegistrar, srv SubtitleServiceServer) {
	s.RegisterService(&SubtitleServiceDesc, srv)
}

// SubtitleServiceClient is the client API for the subtitle service.
type SubtitleServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSubtitleServiceClient creates a client bound to cc.
func NewSubtitleServiceClient(cc grpc.ClientConnInterface) *SubtitleServiceClient {
	return &SubtitleServiceClient{cc: cc}
}

// ResolveSubtitles calls the unary ResolveSubtitles method.
func (c *SubtitleServiceClient) ResolveSubtitles(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, resolveSubtitlesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractSubtitle opens the server stream for a subtitle id. Chunks are read with
// RecvMsg into *wrapperspb.BytesValue until io.EOF.
func (c *SubtitleServiceClient) ExtractSubtitle(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	stream, err := c.cc.NewStream(ctx, &SubtitleServiceDesc.Streams[0], extractSubtitleMethod, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return stream, nil
}
