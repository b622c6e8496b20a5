package grpcapi

import (
	"context"

	"github.com/nrjais/aerostore/internal/resource"
	"github.com/nrjais/aerostore/internal/store"
	"github.com/nrjais/aerostore/pkg/api"
	"google.golang.org/grpc"
)

// SimpleService serves a resource with a single generated id.
type SimpleService[D any] struct {
	repo *store.Repository[D]
}

func NewSimpleService[D any](repo *store.Repository[D]) *SimpleService[D] {
	return &SimpleService[D]{repo: repo}
}

func (s *SimpleService[D]) desc() resource.Descriptor[D] {
	return s.repo.Descriptor()
}

func (s *SimpleService[D]) ServiceDesc() *grpc.ServiceDesc {
	name := ServiceName(s.desc().Definition.Name, RpcService)
	return serviceDesc(name,
		unary(name, "IsReady", isReady),
		unary(name, "GetById", s.GetById),
		unary(name, "Search", s.Search),
		unary(name, "Insert", s.Insert),
		unary(name, "Update", s.Update),
		unary(name, "Delete", s.Delete),
	)
}

func isReady(context.Context, *api.ReadyRequest) (*api.ReadyResponse, error) {
	return &api.ReadyResponse{Ready: true}, nil
}

func (s *SimpleService[D]) GetById(ctx context.Context, req *api.Id) (*api.Object[D], error) {
	obj, err := s.repo.GetByID(ctx, s.desc().FromID(*req))
	if err != nil {
		return nil, toStatus("GetById", err)
	}
	out := obj.ToObject()
	return &out, nil
}

func (s *SimpleService[D]) Search(ctx context.Context, req *api.AdvancedSearchFilter) (*api.List[D], error) {
	objs, err := s.repo.Search(ctx, *req)
	if err != nil {
		return nil, toStatus("Search", err)
	}
	return resource.ToList(objs), nil
}

func (s *SimpleService[D]) Insert(ctx context.Context, req *D) (*api.Response[D], error) {
	obj, res, err := s.repo.Insert(ctx, s.desc().FromData(req))
	if err != nil {
		return nil, toStatus("Insert", err)
	}
	return resource.ToResponse(obj, res), nil
}

func (s *SimpleService[D]) Update(ctx context.Context, req *api.UpdateObject[D]) (*api.Response[D], error) {
	in, mask := s.desc().FromUpdate(*req)
	obj, res, err := s.repo.Update(ctx, in, mask)
	if err != nil {
		return nil, toStatus("Update", err)
	}
	return resource.ToResponse(obj, res), nil
}

func (s *SimpleService[D]) Delete(ctx context.Context, req *api.Id) (*api.Empty, error) {
	if err := s.repo.Delete(ctx, s.desc().FromID(*req)); err != nil {
		return nil, toStatus("Delete", err)
	}
	return &api.Empty{}, nil
}

// SimpleLinkedService serves a resource keyed by the ids of the resources it joins.
type SimpleLinkedService[D any] struct {
	repo *store.Repository[D]
}

func NewSimpleLinkedService[D any](repo *store.Repository[D]) *SimpleLinkedService[D] {
	return &SimpleLinkedService[D]{repo: repo}
}

func (s *SimpleLinkedService[D]) desc() resource.Descriptor[D] {
	return s.repo.Descriptor()
}

func (s *SimpleLinkedService[D]) ServiceDesc() *grpc.ServiceDesc {
	name := ServiceName(s.desc().Definition.Name, RpcService)
	return serviceDesc(name,
		unary(name, "IsReady", isReady),
		unary(name, "GetById", s.GetById),
		unary(name, "GetForIds", s.GetForIds),
		unary(name, "Search", s.Search),
		unary(name, "Insert", s.Insert),
		unary(name, "Update", s.Update),
		unary(name, "Delete", s.Delete),
	)
}

func (s *SimpleLinkedService[D]) GetById(ctx context.Context, req *api.Ids) (*api.LinkedObject[D], error) {
	obj, err := s.repo.GetByID(ctx, s.desc().FromIDs(*req))
	if err != nil {
		return nil, toStatus("GetById", err)
	}
	out := obj.ToLinkedObject()
	return &out, nil
}

// GetForIds returns every row matching a subset of the id columns.
func (s *SimpleLinkedService[D]) GetForIds(ctx context.Context, req *api.Ids) (*api.LinkedList[D], error) {
	objs, err := s.repo.GetForIDs(ctx, s.desc().FromIDs(*req))
	if err != nil {
		return nil, toStatus("GetForIds", err)
	}
	return resource.ToLinkedList(objs), nil
}

func (s *SimpleLinkedService[D]) Search(ctx context.Context, req *api.AdvancedSearchFilter) (*api.LinkedList[D], error) {
	objs, err := s.repo.Search(ctx, *req)
	if err != nil {
		return nil, toStatus("Search", err)
	}
	return resource.ToLinkedList(objs), nil
}

func (s *SimpleLinkedService[D]) Insert(ctx context.Context, req *api.LinkedObject[D]) (*api.LinkedResponse[D], error) {
	obj, res, err := s.repo.Insert(ctx, s.desc().FromLinkedObject(*req))
	if err != nil {
		return nil, toStatus("Insert", err)
	}
	return resource.ToLinkedResponse(obj, res), nil
}

func (s *SimpleLinkedService[D]) Update(ctx context.Context, req *api.UpdateLinkedObject[D]) (*api.LinkedResponse[D], error) {
	in, mask := s.desc().FromUpdateLinked(*req)
	obj, res, err := s.repo.Update(ctx, in, mask)
	if err != nil {
		return nil, toStatus("Update", err)
	}
	return resource.ToLinkedResponse(obj, res), nil
}

func (s *SimpleLinkedService[D]) Delete(ctx context.Context, req *api.Ids) (*api.Empty, error) {
	if err := s.repo.Delete(ctx, s.desc().FromIDs(*req)); err != nil {
		return nil, toStatus("Delete", err)
	}
	return &api.Empty{}, nil
}
