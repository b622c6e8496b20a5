// Package grpcapi exposes the resource repositories as gRPC services using the JSON codec.
package grpcapi

import (
	"context"

	"google.golang.org/grpc"
)

// Service is a resource service that knows its own descriptor.
type Service interface {
	ServiceDesc() *grpc.ServiceDesc
}

// Register adds every service to s.
func Register(s grpc.ServiceRegistrar, services ...Service) {
	for _, svc := range services {
		s.RegisterService(svc.ServiceDesc(), svc)
	}
}

// ServiceName is the fully qualified name of the service of a resource.
func ServiceName(resource, kind string) string {
	return "aerostore." + resource + "." + kind
}

const (
	RpcService     = "RpcService"
	RpcLinkService = "RpcLinkService"
)

// unary builds the method descriptor of a typed handler.
func unary[Req, Resp any](service, method string, fn func(ctx context.Context, req *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(ctx, req.(*Req))
			})
		},
	}
}

func serviceDesc(name string, methods ...grpc.MethodDesc) *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: name,
		HandlerType: (*any)(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
		Metadata:    name,
	}
}
