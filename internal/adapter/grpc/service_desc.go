package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "walletfx.v1.WalletFXService"

// Method names of WalletFXService
const (
	MethodGetDashboard     = "GetDashboard"
	MethodConvert          = "Convert"
	MethodValidateTransfer = "ValidateTransfer"
	MethodSubmitTransfer   = "SubmitTransfer"
	MethodGetRates         = "GetRates"
	MethodRefreshRates     = "RefreshRates"
)

// WalletFXServiceServer is the server API for WalletFXService.
// Messages are google.protobuf.Struct documents; field names are listed on each handler.
type WalletFXServiceServer interface {
	GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Convert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ValidateTransfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitTransfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRates(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RefreshRates(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(WalletFXServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// WalletFXServiceDesc describes WalletFXService for grpc.Server.RegisterService
var WalletFXServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WalletFXServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(MethodGetDashboard, WalletFXServiceServer.GetDashboard),
		unaryMethod(MethodConvert, WalletFXServiceServer.Convert),
		unaryMethod(MethodValidateTransfer, WalletFXServiceServer.ValidateTransfer),
		unaryMethod(MethodSubmitTransfer, WalletFXServiceServer.SubmitTransfer),
		unaryMethod(MethodGetRates, WalletFXServiceServer.GetRates),
		unaryMethod(MethodRefreshRates, WalletFXServiceServer.RefreshRates),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "walletfx/v1/walletfx.proto",
}

// RegisterWalletFXServiceServer registers srv on s
func RegisterWalletFXServiceServer(s grpc.ServiceRegistrar, srv WalletFXServiceServer) {
	s.RegisterService(&WalletFXServiceDesc, srv)
}

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(WalletFXServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(WalletFXServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// WalletFXServiceClient calls WalletFXService over a client connection
type WalletFXServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewWalletFXServiceClient creates a client for WalletFXService
func NewWalletFXServiceClient(cc grpc.ClientConnInterface) *WalletFXServiceClient {
	return &WalletFXServiceClient{cc: cc}
}

// Call invokes method with a Struct request and decodes the Struct reply
func (c *WalletFXServiceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
