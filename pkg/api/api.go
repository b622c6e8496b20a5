// Package api holds the wire types exchanged with the storage service. Every resource shares
// the same envelopes; only the Data type parameter differs.
package api

// Empty is used by RPCs without a meaningful payload.
type Empty struct{}

type ReadyRequest struct{}

type ReadyResponse struct {
	Ready bool `json:"ready"`
}

// Id identifies a simple resource.
type Id struct {
	Id string `json:"id"`
}

// FieldValue is one column of a composite identifier.
type FieldValue struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Ids identifies a linked resource by all of its id columns.
type Ids struct {
	Ids []FieldValue `json:"ids"`
}

func NewIds(pairs ...FieldValue) Ids {
	return Ids{Ids: pairs}
}

// Map returns the identifier as column -> value.
func (i Ids) Map() map[string]string {
	m := make(map[string]string, len(i.Ids))
	for _, fv := range i.Ids {
		m[fv.Field] = fv.Value
	}
	return m
}

type IdList struct {
	Ids []string `json:"ids"`
}

// LinkRequest links Id to every id of OtherIdList.
type LinkRequest struct {
	Id          string  `json:"id"`
	OtherIdList *IdList `json:"other_id_list,omitempty"`
}

type FieldMask struct {
	Paths []string `json:"paths"`
}

type Object[D any] struct {
	Id   string `json:"id"`
	Data *D     `json:"data,omitempty"`
}

type LinkedObject[D any] struct {
	Ids  []FieldValue `json:"ids"`
	Data *D           `json:"data,omitempty"`
}

type UpdateObject[D any] struct {
	Id   string     `json:"id"`
	Data *D         `json:"data,omitempty"`
	Mask *FieldMask `json:"mask,omitempty"`
}

type UpdateLinkedObject[D any] struct {
	Ids  []FieldValue `json:"ids"`
	Data *D           `json:"data,omitempty"`
	Mask *FieldMask   `json:"mask,omitempty"`
}

type ValidationError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationResult struct {
	Success bool              `json:"success"`
	Errors  []ValidationError `json:"errors"`
}

// Response is returned by insert and update. Object is nil when validation failed; callers
// must check ValidationResult.Success, the RPC itself still succeeds.
type Response[D any] struct {
	ValidationResult *ValidationResult `json:"validation_result"`
	Object           *Object[D]        `json:"object,omitempty"`
}

type LinkedResponse[D any] struct {
	ValidationResult *ValidationResult `json:"validation_result"`
	Object           *LinkedObject[D]  `json:"object,omitempty"`
}

type List[D any] struct {
	List []Object[D] `json:"list"`
}

type LinkedList[D any] struct {
	List []LinkedObject[D] `json:"list"`
}
