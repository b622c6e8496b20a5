package resources

import (
	"github.com/nrjais/aerostore/internal/resource"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/pkg/api"
)

var FlightPlan = resource.Descriptor[api.FlightPlanData]{
	Definition: schema.ResourceDefinition{
		Name:      "flight_plan",
		Kind:      schema.Simple,
		TableName: "flight_plan",
		IDColumns: []string{"flight_plan_id"},
		Fields: withAudit(map[string]schema.FieldDefinition{
			"pilot_id":                schema.NewField(schema.UUID, true),
			"vehicle_id":              schema.NewField(schema.UUID, true),
			"path":                    schema.NewField(schema.LineStringZ, true),
			"weather_conditions":      schema.NewField(schema.Text, false),
			"origin_vertiport_id":     schema.NewField(schema.UUID, false),
			"origin_vertipad_id":      schema.NewField(schema.UUID, true),
			"target_vertiport_id":     schema.NewField(schema.UUID, false),
			"target_vertipad_id":      schema.NewField(schema.UUID, true),
			"origin_timeslot_start":   schema.NewField(schema.Timestamp, true),
			"origin_timeslot_end":     schema.NewField(schema.Timestamp, true),
			"target_timeslot_start":   schema.NewField(schema.Timestamp, true),
			"target_timeslot_end":     schema.NewField(schema.Timestamp, true),
			"actual_departure_time":   schema.NewField(schema.Timestamp, false),
			"actual_arrival_time":     schema.NewField(schema.Timestamp, false),
			"flight_release_approval": schema.NewField(schema.Timestamp, false),
			"flight_plan_submitted":   schema.NewField(schema.Timestamp, false),
			"approved_by_id":          schema.NewField(schema.UUID, false),
			"flight_status":           schema.NewEnumField(FlightStatusEnum, true),
			"flight_priority":         schema.NewEnumField(FlightPriorityEnum, true),
		}),
		TableIndices: []string{
			foreignKey("flight_plan", "pilot_id", "pilot", "pilot_id"),
			foreignKey("flight_plan", "vehicle_id", "vehicle", "vehicle_id"),
			foreignKey("flight_plan", "origin_vertipad_id", "vertipad", "vertipad_id"),
			foreignKey("flight_plan", "target_vertipad_id", "vertipad", "vertipad_id"),
			foreignKey("flight_plan", "origin_vertiport_id", "vertiport", "vertiport_id"),
			foreignKey("flight_plan", "target_vertiport_id", "vertiport", "vertiport_id"),
			gistIndex("flight_plan", "path"),
			index("flight_plan", "origin_vertipad_id", "origin_timeslot_start"),
			index("flight_plan", "target_vertipad_id", "target_timeslot_start"),
		},
	},
	Values: func(d *api.FlightPlanData) resource.Fields {
		return resource.Fields{
			"pilot_id":                schema.String(d.PilotId),
			"vehicle_id":              schema.String(d.VehicleId),
			"path":                    schema.OptLineString(d.Path),
			"weather_conditions":      schema.OptString(d.WeatherConditions),
			"origin_vertiport_id":     schema.OptString(d.OriginVertiportId),
			"origin_vertipad_id":      schema.String(d.OriginVertipadId),
			"target_vertiport_id":     schema.OptString(d.TargetVertiportId),
			"target_vertipad_id":      schema.String(d.TargetVertipadId),
			"origin_timeslot_start":   schema.OptTime(d.OriginTimeslotStart),
			"origin_timeslot_end":     schema.OptTime(d.OriginTimeslotEnd),
			"target_timeslot_start":   schema.OptTime(d.TargetTimeslotStart),
			"target_timeslot_end":     schema.OptTime(d.TargetTimeslotEnd),
			"actual_departure_time":   schema.OptTime(d.ActualDepartureTime),
			"actual_arrival_time":     schema.OptTime(d.ActualArrivalTime),
			"flight_release_approval": schema.OptTime(d.FlightReleaseApproval),
			"flight_plan_submitted":   schema.OptTime(d.FlightPlanSubmitted),
			"approved_by_id":          schema.OptString(d.ApprovedById),
			"flight_status":           schema.Int(d.FlightStatus),
			"flight_priority":         schema.Int(d.FlightPriority),
			schema.CreatedAt:          schema.OptTime(d.CreatedAt),
			schema.UpdatedAt:          schema.OptTime(d.UpdatedAt),
		}
	},
	FromRow: func(r *schema.RowReader) *api.FlightPlanData {
		return &api.FlightPlanData{
			PilotId:               r.UUID("pilot_id"),
			VehicleId:             r.UUID("vehicle_id"),
			Path:                  r.OptLineString("path"),
			WeatherConditions:     r.OptString("weather_conditions"),
			OriginVertiportId:     r.OptUUID("origin_vertiport_id"),
			OriginVertipadId:      r.UUID("origin_vertipad_id"),
			TargetVertiportId:     r.OptUUID("target_vertiport_id"),
			TargetVertipadId:      r.UUID("target_vertipad_id"),
			OriginTimeslotStart:   r.Timestamp("origin_timeslot_start"),
			OriginTimeslotEnd:     r.Timestamp("origin_timeslot_end"),
			TargetTimeslotStart:   r.Timestamp("target_timeslot_start"),
			TargetTimeslotEnd:     r.Timestamp("target_timeslot_end"),
			ActualDepartureTime:   r.Timestamp("actual_departure_time"),
			ActualArrivalTime:     r.Timestamp("actual_arrival_time"),
			FlightReleaseApproval: r.Timestamp("flight_release_approval"),
			FlightPlanSubmitted:   r.Timestamp("flight_plan_submitted"),
			ApprovedById:          r.OptUUID("approved_by_id"),
			FlightStatus:          api.FlightStatus(r.Enum("flight_status")),
			FlightPriority:        api.FlightPriority(r.Enum("flight_priority")),
			CreatedAt:             r.Timestamp(schema.CreatedAt),
			UpdatedAt:             r.Timestamp(schema.UpdatedAt),
		}
	},
}

// FlightPlanParcel records which parcels a flight plan picks up or drops off.
var FlightPlanParcel = resource.Descriptor[api.FlightPlanParcelData]{
	Definition: schema.ResourceDefinition{
		Name:      "flight_plan_parcel",
		Kind:      schema.SimpleLinked,
		TableName: "flight_plan_parcel",
		IDColumns: []string{"flight_plan_id", "parcel_id"},
		Fields: map[string]schema.FieldDefinition{
			"acquire": schema.NewField(schema.Bool, true),
			"deliver": schema.NewField(schema.Bool, true),
		},
		TableIndices: []string{
			cascadingForeignKey("flight_plan_parcel", "flight_plan_id", "flight_plan", "flight_plan_id"),
			cascadingForeignKey("flight_plan_parcel", "parcel_id", "parcel", "parcel_id"),
			index("flight_plan_parcel", "parcel_id"),
		},
	},
	Values: func(d *api.FlightPlanParcelData) resource.Fields {
		return resource.Fields{
			"acquire": schema.Bool(d.Acquire),
			"deliver": schema.Bool(d.Deliver),
		}
	},
	FromRow: func(r *schema.RowReader) *api.FlightPlanParcelData {
		return &api.FlightPlanParcelData{
			Acquire: r.Bool("acquire"),
			Deliver: r.Bool("deliver"),
		}
	},
}
