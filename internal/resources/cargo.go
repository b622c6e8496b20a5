package resources

import (
	"github.com/nrjais/aerostore/internal/resource"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/pkg/api"
)

var Parcel = resource.Descriptor[api.ParcelData]{
	Definition: schema.ResourceDefinition{
		Name:      "parcel",
		Kind:      schema.Simple,
		TableName: "parcel",
		IDColumns: []string{"parcel_id"},
		Fields: withAudit(map[string]schema.FieldDefinition{
			"user_id":      schema.NewField(schema.UUID, true),
			"weight_grams": schema.NewField(schema.Int8, true),
			"status":       schema.NewEnumField(ParcelStatusEnum, true),
		}),
		TableIndices: []string{
			foreignKey("parcel", "user_id", "users", "user_id"),
			index("parcel", "user_id"),
		},
	},
	Values: func(d *api.ParcelData) resource.Fields {
		return resource.Fields{
			"user_id":        schema.String(d.UserId),
			"weight_grams":   schema.Int(d.WeightGrams),
			"status":         schema.Int(d.Status),
			schema.CreatedAt: schema.OptTime(d.CreatedAt),
			schema.UpdatedAt: schema.OptTime(d.UpdatedAt),
		}
	},
	FromRow: func(r *schema.RowReader) *api.ParcelData {
		return &api.ParcelData{
			UserId:      r.UUID("user_id"),
			WeightGrams: r.Int("weight_grams"),
			Status:      api.ParcelStatus(r.Enum("status")),
			CreatedAt:   r.Timestamp(schema.CreatedAt),
			UpdatedAt:   r.Timestamp(schema.UpdatedAt),
		}
	},
}

var Scanner = resource.Descriptor[api.ScannerData]{
	Definition: schema.ResourceDefinition{
		Name:      "scanner",
		Kind:      schema.Simple,
		TableName: "scanner",
		IDColumns: []string{"scanner_id"},
		Fields: withAudit(map[string]schema.FieldDefinition{
			"organization_id": schema.NewField(schema.UUID, true),
			"scanner_type":    schema.NewEnumField(ScannerTypeEnum, true),
			"scanner_status":  schema.NewEnumField(ScannerStatusEnum, true),
		}),
	},
	Values: func(d *api.ScannerData) resource.Fields {
		return resource.Fields{
			"organization_id": schema.String(d.OrganizationId),
			"scanner_type":    schema.Int(d.ScannerType),
			"scanner_status":  schema.Int(d.ScannerStatus),
			schema.CreatedAt:  schema.OptTime(d.CreatedAt),
			schema.UpdatedAt:  schema.OptTime(d.UpdatedAt),
		}
	},
	FromRow: func(r *schema.RowReader) *api.ScannerData {
		return &api.ScannerData{
			OrganizationId: r.UUID("organization_id"),
			ScannerType:    api.ScannerType(r.Enum("scanner_type")),
			ScannerStatus:  api.ScannerStatus(r.Enum("scanner_status")),
			CreatedAt:      r.Timestamp(schema.CreatedAt),
			UpdatedAt:      r.Timestamp(schema.UpdatedAt),
		}
	},
}
