package resource

import (
	"github.com/nrjais/aerostore/internal/validation"
	"github.com/nrjais/aerostore/pkg/api"
	"github.com/samber/lo"
)

// FromID builds an object identified by a simple id.
func (desc Descriptor[D]) FromID(id api.Id) Object[D] {
	ids := map[string]string{}
	if len(desc.Definition.IDColumns) > 0 {
		ids[desc.Definition.IDColumns[0]] = id.Id
	}
	return desc.NewObject(ids, nil)
}

func (desc Descriptor[D]) FromIDs(ids api.Ids) Object[D] {
	return desc.NewObject(ids.Map(), nil)
}

// FromData builds a new simple object; its id is assigned on insert.
func (desc Descriptor[D]) FromData(data *D) Object[D] {
	return desc.NewObject(nil, data)
}

func (desc Descriptor[D]) FromLinkedObject(obj api.LinkedObject[D]) Object[D] {
	return desc.NewObject(api.Ids{Ids: obj.Ids}.Map(), obj.Data)
}

// FromUpdate returns the object and the field mask of an update request.
func (desc Descriptor[D]) FromUpdate(req api.UpdateObject[D]) (Object[D], []string) {
	return desc.FromID(api.Id{Id: req.Id}).withData(req.Data), maskPaths(req.Mask)
}

func (desc Descriptor[D]) FromUpdateLinked(req api.UpdateLinkedObject[D]) (Object[D], []string) {
	return desc.FromIDs(api.Ids{Ids: req.Ids}).withData(req.Data), maskPaths(req.Mask)
}

func (o Object[D]) withData(data *D) Object[D] {
	o.Data = data
	return o
}

func maskPaths(mask *api.FieldMask) []string {
	if mask == nil {
		return nil
	}
	return mask.Paths
}

func (o Object[D]) ToObject() api.Object[D] {
	var id string
	if len(o.def.IDColumns) > 0 {
		id = o.IDs[o.def.IDColumns[0]]
	}
	return api.Object[D]{Id: id, Data: o.Data}
}

func (o Object[D]) ToLinkedObject() api.LinkedObject[D] {
	ids := lo.Map(o.def.IDColumns, func(col string, _ int) api.FieldValue {
		return api.FieldValue{Field: col, Value: o.IDs[col]}
	})
	return api.LinkedObject[D]{Ids: ids, Data: o.Data}
}

func ToValidationResult(res validation.Result) *api.ValidationResult {
	return &api.ValidationResult{
		Success: res.Success,
		Errors: lo.Map(res.Errors, func(e validation.FieldError, _ int) api.ValidationError {
			return api.ValidationError{Field: e.Field, Error: e.Message}
		}),
	}
}

// ToResponse packages a write result; obj is nil when validation failed.
func ToResponse[D any](obj *Object[D], res validation.Result) *api.Response[D] {
	resp := &api.Response[D]{ValidationResult: ToValidationResult(res)}
	if obj != nil {
		o := obj.ToObject()
		resp.Object = &o
	}
	return resp
}

func ToLinkedResponse[D any](obj *Object[D], res validation.Result) *api.LinkedResponse[D] {
	resp := &api.LinkedResponse[D]{ValidationResult: ToValidationResult(res)}
	if obj != nil {
		o := obj.ToLinkedObject()
		resp.Object = &o
	}
	return resp
}

func ToList[D any](objs []Object[D]) *api.List[D] {
	return &api.List[D]{List: lo.Map(objs, func(o Object[D], _ int) api.Object[D] { return o.ToObject() })}
}

func ToLinkedList[D any](objs []Object[D]) *api.LinkedList[D] {
	return &api.LinkedList[D]{List: lo.Map(objs, func(o Object[D], _ int) api.LinkedObject[D] { return o.ToLinkedObject() })}
}
