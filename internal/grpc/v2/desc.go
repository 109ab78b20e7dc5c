package v2

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "linkgate.v2.Links"

// LinksServer is the server API of the linkgate.v2.Links service.
// Requests and responses are google.protobuf.Struct documents.
type LinksServer interface {
	CreateLink(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Resolve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UserSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClicksOverTime(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(LinksServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LinksServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LinksServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes linkgate.v2.Links for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LinksServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("CreateLink", LinksServer.CreateLink),
		unaryHandler("Resolve", LinksServer.Resolve),
		unaryHandler("UserSummary", LinksServer.UserSummary),
		unaryHandler("ClicksOverTime", LinksServer.ClicksOverTime),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "linkgate/v2/links.proto",
}

// Register adds srv to s.
func Register(s grpc.ServiceRegistrar, srv LinksServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls linkgate.v2.Links.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateLink(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateLink", in, opts...)
}

func (c *Client) Resolve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Resolve", in, opts...)
}

func (c *Client) UserSummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "UserSummary", in, opts...)
}

func (c *Client) ClicksOverTime(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ClicksOverTime", in, opts...)
}
