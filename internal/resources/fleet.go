package resources

import (
	"github.com/nrjais/aerostore/internal/resource"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/pkg/api"
)

var Vehicle = resource.Descriptor[api.VehicleData]{
	Definition: schema.ResourceDefinition{
		Name:      "vehicle",
		Kind:      schema.Simple,
		TableName: "vehicle",
		IDColumns: []string{"vehicle_id"},
		Fields: withAudit(map[string]schema.FieldDefinition{
			"vehicle_model_id":    schema.NewField(schema.UUID, true),
			"serial_number":       schema.NewField(schema.Text, true),
			"registration_number": schema.NewField(schema.Text, true),
			"description":         schema.NewField(schema.Text, false),
			"asset_group_id":      schema.NewField(schema.UUID, false),
			"schedule":            schema.NewField(schema.Text, false),
			"hangar_id":           schema.NewField(schema.UUID, false),
			"hangar_bay_id":       schema.NewField(schema.UUID, false),
			"max_payload_grams":   schema.NewField(schema.Int8, false),
			"last_maintenance":    schema.NewField(schema.Timestamp, false),
			"next_maintenance":    schema.NewField(schema.Timestamp, false),
		}),
		TableIndices: []string{
			foreignKey("vehicle", "hangar_id", "vertiport", "vertiport_id"),
			foreignKey("vehicle", "hangar_bay_id", "vertipad", "vertipad_id"),
			"CREATE UNIQUE INDEX IF NOT EXISTS vehicle_registration_number_key ON vehicle (registration_number)",
		},
	},
	Values: func(d *api.VehicleData) resource.Fields {
		return resource.Fields{
			"vehicle_model_id":    schema.String(d.VehicleModelId),
			"serial_number":       schema.String(d.SerialNumber),
			"registration_number": schema.String(d.RegistrationNumber),
			"description":         schema.OptString(d.Description),
			"asset_group_id":      schema.OptString(d.AssetGroupId),
			"schedule":            schema.OptString(d.Schedule),
			"hangar_id":           schema.OptString(d.HangarId),
			"hangar_bay_id":       schema.OptString(d.HangarBayId),
			"max_payload_grams":   schema.OptInt(d.MaxPayloadGrams),
			"last_maintenance":    schema.OptTime(d.LastMaintenance),
			"next_maintenance":    schema.OptTime(d.NextMaintenance),
			schema.CreatedAt:      schema.OptTime(d.CreatedAt),
			schema.UpdatedAt:      schema.OptTime(d.UpdatedAt),
		}
	},
	FromRow: func(r *schema.RowReader) *api.VehicleData {
		return &api.VehicleData{
			VehicleModelId:     r.UUID("vehicle_model_id"),
			SerialNumber:       r.String("serial_number"),
			RegistrationNumber: r.String("registration_number"),
			Description:        r.OptString("description"),
			AssetGroupId:       r.OptUUID("asset_group_id"),
			Schedule:           r.OptString("schedule"),
			HangarId:           r.OptUUID("hangar_id"),
			HangarBayId:        r.OptUUID("hangar_bay_id"),
			MaxPayloadGrams:    r.OptInt("max_payload_grams"),
			LastMaintenance:    r.Timestamp("last_maintenance"),
			NextMaintenance:    r.Timestamp("next_maintenance"),
			CreatedAt:          r.Timestamp(schema.CreatedAt),
			UpdatedAt:          r.Timestamp(schema.UpdatedAt),
		}
	},
}

var Pilot = resource.Descriptor[api.PilotData]{
	Definition: schema.ResourceDefinition{
		Name:      "pilot",
		Kind:      schema.Simple,
		TableName: "pilot",
		IDColumns: []string{"pilot_id"},
		Fields: withAudit(map[string]schema.FieldDefinition{
			"first_name": schema.NewField(schema.Text, true),
			"last_name":  schema.NewField(schema.Text, true),
		}),
	},
	Values: func(d *api.PilotData) resource.Fields {
		return resource.Fields{
			"first_name":     schema.String(d.FirstName),
			"last_name":      schema.String(d.LastName),
			schema.CreatedAt: schema.OptTime(d.CreatedAt),
			schema.UpdatedAt: schema.OptTime(d.UpdatedAt),
		}
	},
	FromRow: func(r *schema.RowReader) *api.PilotData {
		return &api.PilotData{
			FirstName: r.String("first_name"),
			LastName:  r.String("last_name"),
			CreatedAt: r.Timestamp(schema.CreatedAt),
			UpdatedAt: r.Timestamp(schema.UpdatedAt),
		}
	},
}
