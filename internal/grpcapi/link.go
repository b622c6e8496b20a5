package grpcapi

import (
	"context"

	"github.com/nrjais/aerostore/internal/resource"
	"github.com/nrjais/aerostore/internal/store"
	"github.com/nrjais/aerostore/pkg/api"
	"google.golang.org/grpc"
)

// LinkService manages the links from an owner resource to resources of type O.
type LinkService[O any] struct {
	links *store.LinkRepository
	other *store.Repository[O]
}

func NewLinkService[O any](links *store.LinkRepository, other *store.Repository[O]) *LinkService[O] {
	return &LinkService[O]{links: links, other: other}
}

func (s *LinkService[O]) ServiceDesc() *grpc.ServiceDesc {
	name := ServiceName(s.links.Definition().Name, RpcLinkService)
	return serviceDesc(name,
		unary(name, "IsReady", isReady),
		unary(name, "Link", s.Link),
		unary(name, "ReplaceLinked", s.ReplaceLinked),
		unary(name, "Unlink", s.Unlink),
		unary(name, "GetLinkedIds", s.GetLinkedIds),
		unary(name, "GetLinked", s.GetLinked),
	)
}

func otherIDs(req *api.LinkRequest) []string {
	if req.OtherIdList == nil {
		return nil
	}
	return req.OtherIdList.Ids
}

func (s *LinkService[O]) Link(ctx context.Context, req *api.LinkRequest) (*api.Empty, error) {
	if err := s.links.LinkIDs(ctx, req.Id, otherIDs(req), false); err != nil {
		return nil, toStatus("Link", err)
	}
	return &api.Empty{}, nil
}

// ReplaceLinked makes the given ids the only links of the owner.
func (s *LinkService[O]) ReplaceLinked(ctx context.Context, req *api.LinkRequest) (*api.Empty, error) {
	if err := s.links.LinkIDs(ctx, req.Id, otherIDs(req), true); err != nil {
		return nil, toStatus("ReplaceLinked", err)
	}
	return &api.Empty{}, nil
}

func (s *LinkService[O]) Unlink(ctx context.Context, req *api.LinkRequest) (*api.Empty, error) {
	if err := s.links.UnlinkIDs(ctx, req.Id, otherIDs(req)); err != nil {
		return nil, toStatus("Unlink", err)
	}
	return &api.Empty{}, nil
}

func (s *LinkService[O]) GetLinkedIds(ctx context.Context, req *api.Id) (*api.IdList, error) {
	ids, err := s.links.GetLinkedIDs(ctx, req.Id)
	if err != nil {
		return nil, toStatus("GetLinkedIds", err)
	}
	return &api.IdList{Ids: ids}, nil
}

func (s *LinkService[O]) GetLinked(ctx context.Context, req *api.Id) (*api.List[O], error) {
	objs, err := store.GetLinked(ctx, s.links, s.other, req.Id)
	if err != nil {
		return nil, toStatus("GetLinked", err)
	}
	return resource.ToList(objs), nil
}
