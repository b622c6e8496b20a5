package resource

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/internal/validation"
	"github.com/nrjais/aerostore/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteData struct {
	Title string
	Pages *int64
}

var noteDesc = Descriptor[noteData]{
	Definition: schema.ResourceDefinition{
		Name:      "note",
		Kind:      schema.Simple,
		TableName: "note",
		IDColumns: []string{"note_id"},
		Fields: map[string]schema.FieldDefinition{
			"title":      schema.NewField(schema.Text, true),
			"pages":      schema.NewField(schema.Int4, false),
			"deleted_at": schema.NewField(schema.Timestamp, false).SetInternal(),
		},
	},
	Values: func(d *noteData) Fields {
		return Fields{"title": schema.String(d.Title), "pages": schema.OptInt(d.Pages)}
	},
	FromRow: func(r *schema.RowReader) *noteData {
		return &noteData{Title: r.String("title"), Pages: r.OptInt("pages")}
	},
}

var pairDesc = LinkDescriptor(schema.ResourceDefinition{
	Name:      "note_tag",
	Kind:      schema.Linked,
	TableName: "note_tag",
	IDColumns: []string{"note_id", "tag_id"},
	Fields:    map[string]schema.FieldDefinition{},
})

func TestObjectIDs(t *testing.T) {
	id := uuid.New()

	t.Run("simple id", func(t *testing.T) {
		obj := noteDesc.FromID(api.Id{Id: id.String()})
		col, err := obj.TryGetIDField()
		require.NoError(t, err)
		assert.Equal(t, "note_id", col)

		got, err := obj.TryGetUUID()
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := noteDesc.FromID(api.Id{Id: "nope"}).TryGetUUID()
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := noteDesc.FromData(&noteData{}).TryGetUUID()
		assert.ErrorIs(t, err, ErrMissingID)
	})

	t.Run("linked ids", func(t *testing.T) {
		tag := uuid.New()
		obj := pairDesc.FromIDs(api.NewIds(
			api.FieldValue{Field: "note_id", Value: id.String()},
			api.FieldValue{Field: "tag_id", Value: tag.String()},
		))
		_, err := obj.TryGetIDField()
		assert.ErrorIs(t, err, ErrMissingID)

		ids, err := obj.TryGetUUIDs()
		require.NoError(t, err)
		assert.Equal(t, map[string]uuid.UUID{"note_id": id, "tag_id": tag}, ids)
	})

	t.Run("partial ids", func(t *testing.T) {
		obj := pairDesc.FromIDs(api.NewIds(api.FieldValue{Field: "note_id", Value: id.String()}))
		_, err := obj.IDMap()
		assert.ErrorIs(t, err, ErrMissingID)

		partial, err := obj.PartialIDMap()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"note_id": id.String()}, partial)

		_, err = pairDesc.FromIDs(api.NewIds(api.FieldValue{Field: "other_id", Value: id.String()})).PartialIDMap()
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestObjectFromRow(t *testing.T) {
	id := uuid.New()

	t.Run("active", func(t *testing.T) {
		obj, err := noteDesc.ObjectFromRow(schema.Row{
			"note_id": [16]byte(id), "title": "hello", "pages": int32(12), "deleted_at": nil,
		})
		require.NoError(t, err)
		assert.False(t, obj.IsArchived())
		assert.Equal(t, id.String(), obj.IDs["note_id"])
		assert.Equal(t, "hello", obj.Data.Title)
		assert.Equal(t, int64(12), *obj.Data.Pages)

		wire := obj.ToObject()
		assert.Equal(t, id.String(), wire.Id)
		assert.Equal(t, obj.Data, wire.Data)
	})

	t.Run("archived", func(t *testing.T) {
		obj, err := noteDesc.ObjectFromRow(schema.Row{
			"note_id": [16]byte(id), "title": "hello", "pages": nil, "deleted_at": time.Now(),
		})
		require.NoError(t, err)
		assert.True(t, obj.IsArchived())
		assert.Nil(t, obj.Data.Pages)
	})

	t.Run("non archivable never archived", func(t *testing.T) {
		obj, err := pairDesc.ObjectFromRow(schema.Row{
			"note_id": [16]byte(id), "tag_id": [16]byte(id), "deleted_at": time.Now(),
		})
		require.NoError(t, err)
		assert.False(t, obj.IsArchived())
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := noteDesc.ObjectFromRow(schema.Row{
			"note_id": [16]byte(id), "title": 42, "pages": nil, "deleted_at": nil,
		})
		assert.ErrorIs(t, err, schema.ErrRowConversion)
	})
}

func TestConversions(t *testing.T) {
	t.Run("update carries mask", func(t *testing.T) {
		obj, mask := noteDesc.FromUpdate(api.UpdateObject[noteData]{
			Id:   "abc",
			Data: &noteData{Title: "x"},
			Mask: &api.FieldMask{Paths: []string{"title"}},
		})
		assert.Equal(t, []string{"title"}, mask)
		assert.Equal(t, "abc", obj.IDs["note_id"])
		assert.Equal(t, "x", obj.Data.Title)

		_, mask = noteDesc.FromUpdate(api.UpdateObject[noteData]{Id: "abc"})
		assert.Nil(t, mask)
	})

	t.Run("linked object keeps id order", func(t *testing.T) {
		obj := pairDesc.NewObject(map[string]string{"tag_id": "t", "note_id": "n"}, nil)
		wire := obj.ToLinkedObject()
		assert.Equal(t, []api.FieldValue{{Field: "note_id", Value: "n"}, {Field: "tag_id", Value: "t"}}, wire.Ids)
	})

	t.Run("response without object on validation failure", func(t *testing.T) {
		res := validation.Result{Errors: []validation.FieldError{{Field: "title", Message: "mandatory field is missing"}}}
		resp := ToResponse[noteData](nil, res)
		assert.False(t, resp.ValidationResult.Success)
		assert.Nil(t, resp.Object)
		assert.Equal(t, []api.ValidationError{{Field: "title", Error: "mandatory field is missing"}}, resp.ValidationResult.Errors)
	})

	t.Run("data accessor feeds validation", func(t *testing.T) {
		params, res, err := validation.Validate(noteDesc.Definition, noteDesc.Accessor(&noteData{Title: "t"}))
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, []string{"pages", "title"}, params.Columns())
	})
}
