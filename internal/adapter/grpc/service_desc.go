package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the portfolio service.
// Requests and responses are google.protobuf.Struct messages.
const ServiceName = "goldfolio.v1.PortfolioService"

// PortfolioServiceServer is the server API for the portfolio service
type PortfolioServiceServer interface {
	ListLots(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Buy(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Sell(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteLot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPrices(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPortfolio(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(PortfolioServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// PortfolioServiceDesc describes the portfolio service for grpc.Server.RegisterService
var PortfolioServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PortfolioServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListLots", PortfolioServiceServer.ListLots),
		unaryMethod("Buy", PortfolioServiceServer.Buy),
		unaryMethod("Sell", PortfolioServiceServer.Sell),
		unaryMethod("DeleteLot", PortfolioServiceServer.DeleteLot),
		unaryMethod("GetPrices", PortfolioServiceServer.GetPrices),
		unaryMethod("GetPortfolio", PortfolioServiceServer.GetPortfolio),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "goldfolio/v1/portfolio.proto",
}

// RegisterPortfolioServiceServer registers srv on s
func RegisterPortfolioServiceServer(s grpc.ServiceRegistrar, srv PortfolioServiceServer) {
	s.RegisterService(&PortfolioServiceDesc, srv)
}

// FullMethod returns the wire path of a portfolio service method, e.g. "/goldfolio.v1.PortfolioService/Buy"
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PortfolioServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(PortfolioServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// PortfolioServiceClient is a thin client for the portfolio service
type PortfolioServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPortfolioServiceClient creates a client on top of an established connection
func NewPortfolioServiceClient(cc grpc.ClientConnInterface) *PortfolioServiceClient {
	return &PortfolioServiceClient{cc: cc}
}

// Call invokes method with req. A nil req sends an empty message.
func (c *PortfolioServiceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
