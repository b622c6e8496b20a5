// Package client is the Go client of the aerostore storage service.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/nrjais/aerostore/pkg/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	rpcService     = "RpcService"
	rpcLinkService = "RpcLinkService"
)

type ClientConfig struct {
	ServerAddr string
	// Timeout bounds every call made without a deadline. Zero means no bound.
	Timeout time.Duration
}

type Client struct {
	conn   *grpc.ClientConn
	config ClientConfig
}

// NewClient connects to the server. Extra dial options are appended to the defaults.
func NewClient(config ClientConfig, opts ...grpc.DialOption) (*Client, error) {
	if config.ServerAddr == "" {
		return nil, fmt.Errorf("server address is required")
	}
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(config.ServerAddr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server %s: %w", config.ServerAddr, err)
	}
	return &Client{conn: conn, config: config}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, service, method string, in, out any) error {
	if _, ok := ctx.Deadline(); !ok && c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}
	return c.conn.Invoke(ctx, "/"+service+"/"+method, in, out)
}

func serviceName(resource, kind string) string {
	return "aerostore." + resource + "." + kind
}

// ResourceClient calls the service of a simple resource.
type ResourceClient[D any] struct {
	c       *Client
	service string
}

func NewResourceClient[D any](c *Client, resource string) *ResourceClient[D] {
	return &ResourceClient[D]{c: c, service: serviceName(resource, rpcService)}
}

func (r *ResourceClient[D]) IsReady(ctx context.Context) (bool, error) {
	return isReady(ctx, r.c, r.service)
}

func (r *ResourceClient[D]) GetById(ctx context.Context, id string) (*api.Object[D], error) {
	out := new(api.Object[D])
	return out, r.c.invoke(ctx, r.service, "GetById", &api.Id{Id: id}, out)
}

func (r *ResourceClient[D]) Search(ctx context.Context, filter *api.AdvancedSearchFilter) (*api.List[D], error) {
	out := new(api.List[D])
	return out, r.c.invoke(ctx, r.service, "Search", filter, out)
}

// Insert stores data. Check the returned validation result: a rejected object is not an error.
func (r *ResourceClient[D]) Insert(ctx context.Context, data *D) (*api.Response[D], error) {
	out := new(api.Response[D])
	return out, r.c.invoke(ctx, r.service, "Insert", data, out)
}

func (r *ResourceClient[D]) Update(ctx context.Context, req *api.UpdateObject[D]) (*api.Response[D], error) {
	out := new(api.Response[D])
	return out, r.c.invoke(ctx, r.service, "Update", req, out)
}

func (r *ResourceClient[D]) Delete(ctx context.Context, id string) error {
	return r.c.invoke(ctx, r.service, "Delete", &api.Id{Id: id}, &api.Empty{})
}

// LinkedResourceClient calls the service of a resource keyed by several ids.
type LinkedResourceClient[D any] struct {
	c       *Client
	service string
}

func NewLinkedResourceClient[D any](c *Client, resource string) *LinkedResourceClient[D] {
	return &LinkedResourceClient[D]{c: c, service: serviceName(resource, rpcService)}
}

func (r *LinkedResourceClient[D]) IsReady(ctx context.Context) (bool, error) {
	return isReady(ctx, r.c, r.service)
}

func (r *LinkedResourceClient[D]) GetById(ctx context.Context, ids api.Ids) (*api.LinkedObject[D], error) {
	out := new(api.LinkedObject[D])
	return out, r.c.invoke(ctx, r.service, "GetById", &ids, out)
}

func (r *LinkedResourceClient[D]) GetForIds(ctx context.Context, ids api.Ids) (*api.LinkedList[D], error) {
	out := new(api.LinkedList[D])
	return out, r.c.invoke(ctx, r.service, "GetForIds", &ids, out)
}

func (r *LinkedResourceClient[D]) Search(ctx context.Context, filter *api.AdvancedSearchFilter) (*api.LinkedList[D], error) {
	out := new(api.LinkedList[D])
	return out, r.c.invoke(ctx, r.service, "Search", filter, out)
}

func (r *LinkedResourceClient[D]) Insert(ctx context.Context, obj *api.LinkedObject[D]) (*api.LinkedResponse[D], error) {
	out := new(api.LinkedResponse[D])
	return out, r.c.invoke(ctx, r.service, "Insert", obj, out)
}

func (r *LinkedResourceClient[D]) Update(ctx context.Context, req *api.UpdateLinkedObject[D]) (*api.LinkedResponse[D], error) {
	out := new(api.LinkedResponse[D])
	return out, r.c.invoke(ctx, r.service, "Update", req, out)
}

func (r *LinkedResourceClient[D]) Delete(ctx context.Context, ids api.Ids) error {
	return r.c.invoke(ctx, r.service, "Delete", &ids, &api.Empty{})
}

// LinkClient manages the links from an owner to resources with data O.
type LinkClient[O any] struct {
	c       *Client
	service string
}

func NewLinkClient[O any](c *Client, resource string) *LinkClient[O] {
	return &LinkClient[O]{c: c, service: serviceName(resource, rpcLinkService)}
}

func (l *LinkClient[O]) IsReady(ctx context.Context) (bool, error) {
	return isReady(ctx, l.c, l.service)
}

func linkRequest(id string, others []string) *api.LinkRequest {
	return &api.LinkRequest{Id: id, OtherIdList: &api.IdList{Ids: others}}
}

func (l *LinkClient[O]) Link(ctx context.Context, id string, others ...string) error {
	return l.c.invoke(ctx, l.service, "Link", linkRequest(id, others), &api.Empty{})
}

func (l *LinkClient[O]) ReplaceLinked(ctx context.Context, id string, others ...string) error {
	return l.c.invoke(ctx, l.service, "ReplaceLinked", linkRequest(id, others), &api.Empty{})
}

func (l *LinkClient[O]) Unlink(ctx context.Context, id string, others ...string) error {
	return l.c.invoke(ctx, l.service, "Unlink", linkRequest(id, others), &api.Empty{})
}

func (l *LinkClient[O]) GetLinkedIds(ctx context.Context, id string) ([]string, error) {
	out := new(api.IdList)
	if err := l.c.invoke(ctx, l.service, "GetLinkedIds", &api.Id{Id: id}, out); err != nil {
		return nil, err
	}
	return out.Ids, nil
}

func (l *LinkClient[O]) GetLinked(ctx context.Context, id string) (*api.List[O], error) {
	out := new(api.List[O])
	return out, l.c.invoke(ctx, l.service, "GetLinked", &api.Id{Id: id}, out)
}

func isReady(ctx context.Context, c *Client, service string) (bool, error) {
	out := new(api.ReadyResponse)
	if err := c.invoke(ctx, service, "IsReady", &api.ReadyRequest{}, out); err != nil {
		return false, err
	}
	return out.Ready, nil
}
