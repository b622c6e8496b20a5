package resources

import (
	"github.com/nrjais/aerostore/internal/resource"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/pkg/api"
)

var User = resource.Descriptor[api.UserData]{
	Definition: schema.ResourceDefinition{
		Name:      "user",
		Kind:      schema.Simple,
		TableName: "users",
		IDColumns: []string{"user_id"},
		Fields: withAudit(map[string]schema.FieldDefinition{
			"auth_method":  schema.NewEnumField(AuthMethodEnum, true),
			"display_name": schema.NewField(schema.Text, true),
			"email":        schema.NewField(schema.Text, true),
		}),
		TableIndices: []string{
			"CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)",
		},
	},
	Values: func(d *api.UserData) resource.Fields {
		return resource.Fields{
			"auth_method":    schema.Int(d.AuthMethod),
			"display_name":   schema.String(d.DisplayName),
			"email":          schema.String(d.Email),
			schema.CreatedAt: schema.OptTime(d.CreatedAt),
			schema.UpdatedAt: schema.OptTime(d.UpdatedAt),
		}
	},
	FromRow: func(r *schema.RowReader) *api.UserData {
		return &api.UserData{
			AuthMethod:  api.AuthMethod(r.Enum("auth_method")),
			DisplayName: r.String("display_name"),
			Email:       r.String("email"),
			CreatedAt:   r.Timestamp(schema.CreatedAt),
			UpdatedAt:   r.Timestamp(schema.UpdatedAt),
		}
	},
}

var Group = resource.Descriptor[api.GroupData]{
	Definition: schema.ResourceDefinition{
		Name:      "group",
		Kind:      schema.Simple,
		TableName: "groups",
		IDColumns: []string{"group_id"},
		Fields: withAudit(map[string]schema.FieldDefinition{
			"name":            schema.NewField(schema.Text, true),
			"description":     schema.NewField(schema.Text, true),
			"group_type":      schema.NewEnumField(GroupTypeEnum, true),
			"parent_group_id": schema.NewField(schema.UUID, false),
		}),
		TableIndices: []string{
			foreignKey("groups", "parent_group_id", "groups", "group_id"),
		},
	},
	Values: func(d *api.GroupData) resource.Fields {
		return resource.Fields{
			"name":            schema.String(d.Name),
			"description":     schema.String(d.Description),
			"group_type":      schema.Int(d.GroupType),
			"parent_group_id": schema.OptString(d.ParentGroupId),
			schema.CreatedAt:  schema.OptTime(d.CreatedAt),
			schema.UpdatedAt:  schema.OptTime(d.UpdatedAt),
		}
	},
	FromRow: func(r *schema.RowReader) *api.GroupData {
		return &api.GroupData{
			Name:          r.String("name"),
			Description:   r.String("description"),
			GroupType:     api.GroupType(r.Enum("group_type")),
			ParentGroupId: r.OptUUID("parent_group_id"),
			CreatedAt:     r.Timestamp(schema.CreatedAt),
			UpdatedAt:     r.Timestamp(schema.UpdatedAt),
		}
	},
}

var (
	GroupUser      = resource.LinkDescriptor(linkDefinition("group_user", "group_user", "groups", "group_id", "users", "user_id"))
	GroupVehicle   = resource.LinkDescriptor(linkDefinition("group_vehicle", "group_vehicle", "groups", "group_id", "vehicle", "vehicle_id"))
	GroupVertiport = resource.LinkDescriptor(linkDefinition("group_vertiport", "group_vertiport", "groups", "group_id", "vertiport", "vertiport_id"))
	GroupVertipad  = resource.LinkDescriptor(linkDefinition("group_vertipad", "group_vertipad", "groups", "group_id", "vertipad", "vertipad_id"))
)
