package resources

import (
	"github.com/nrjais/aerostore/internal/resource"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/pkg/api"
)

var Vertiport = resource.Descriptor[api.VertiportData]{
	Definition: schema.ResourceDefinition{
		Name:      "vertiport",
		Kind:      schema.Simple,
		TableName: "vertiport",
		IDColumns: []string{"vertiport_id"},
		Fields: withAudit(map[string]schema.FieldDefinition{
			"name":         schema.NewField(schema.Text, true),
			"description":  schema.NewField(schema.Text, true),
			"geo_location": schema.NewField(schema.PolygonZ, true),
			"schedule":     schema.NewField(schema.Text, false),
		}),
		TableIndices: []string{
			gistIndex("vertiport", "geo_location"),
		},
	},
	Values: func(d *api.VertiportData) resource.Fields {
		return resource.Fields{
			"name":           schema.String(d.Name),
			"description":    schema.String(d.Description),
			"geo_location":   schema.OptPolygon(d.GeoLocation),
			"schedule":       schema.OptString(d.Schedule),
			schema.CreatedAt: schema.OptTime(d.CreatedAt),
			schema.UpdatedAt: schema.OptTime(d.UpdatedAt),
		}
	},
	FromRow: func(r *schema.RowReader) *api.VertiportData {
		return &api.VertiportData{
			Name:        r.String("name"),
			Description: r.String("description"),
			GeoLocation: r.OptPolygon("geo_location"),
			Schedule:    r.OptString("schedule"),
			CreatedAt:   r.Timestamp(schema.CreatedAt),
			UpdatedAt:   r.Timestamp(schema.UpdatedAt),
		}
	},
}

var Vertipad = resource.Descriptor[api.VertipadData]{
	Definition: schema.ResourceDefinition{
		Name:      "vertipad",
		Kind:      schema.Simple,
		TableName: "vertipad",
		IDColumns: []string{"vertipad_id"},
		Fields: withAudit(map[string]schema.FieldDefinition{
			"vertiport_id": schema.NewField(schema.UUID, true),
			"name":         schema.NewField(schema.Text, true),
			"geo_location": schema.NewField(schema.PointZ, true),
			"enabled":      schema.NewField(schema.Bool, true).WithDefault("true"),
			"occupied":     schema.NewField(schema.Bool, true).WithDefault("false"),
			"schedule":     schema.NewField(schema.Text, false),
		}),
		TableIndices: []string{
			foreignKey("vertipad", "vertiport_id", "vertiport", "vertiport_id"),
			gistIndex("vertipad", "geo_location"),
		},
	},
	Values: func(d *api.VertipadData) resource.Fields {
		return resource.Fields{
			"vertiport_id":   schema.String(d.VertiportId),
			"name":           schema.String(d.Name),
			"geo_location":   schema.OptPoint(d.GeoLocation),
			"enabled":        schema.Bool(d.Enabled),
			"occupied":       schema.Bool(d.Occupied),
			"schedule":       schema.OptString(d.Schedule),
			schema.CreatedAt: schema.OptTime(d.CreatedAt),
			schema.UpdatedAt: schema.OptTime(d.UpdatedAt),
		}
	},
	FromRow: func(r *schema.RowReader) *api.VertipadData {
		return &api.VertipadData{
			VertiportId: r.UUID("vertiport_id"),
			Name:        r.String("name"),
			GeoLocation: r.OptPoint("geo_location"),
			Enabled:     r.Bool("enabled"),
			Occupied:    r.Bool("occupied"),
			Schedule:    r.OptString("schedule"),
			CreatedAt:   r.Timestamp(schema.CreatedAt),
			UpdatedAt:   r.Timestamp(schema.UpdatedAt),
		}
	},
}
