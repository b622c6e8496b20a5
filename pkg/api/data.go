package api

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type FlightStatus int32

const (
	FlightStatusReady FlightStatus = iota
	FlightStatusBoarding
	FlightStatusInFlight
	FlightStatusFinished
	FlightStatusCancelled
	FlightStatusDraft
)

var FlightStatusName = map[int32]string{
	0: "READY",
	1: "BOARDING",
	2: "IN_FLIGHT",
	3: "FINISHED",
	4: "CANCELLED",
	5: "DRAFT",
}

type FlightPriority int32

const (
	FlightPriorityLow FlightPriority = iota
	FlightPriorityHigh
	FlightPriorityEmergency
)

var FlightPriorityName = map[int32]string{
	0: "LOW",
	1: "HIGH",
	2: "EMERGENCY",
}

type ParcelStatus int32

const (
	ParcelStatusNotDroppedOff ParcelStatus = iota
	ParcelStatusDroppedOff
	ParcelStatusEnRoute
	ParcelStatusArrived
	ParcelStatusPickedUp
	ParcelStatusComplete
)

var ParcelStatusName = map[int32]string{
	0: "NOTDROPPEDOFF",
	1: "DROPPEDOFF",
	2: "ENROUTE",
	3: "ARRIVED",
	4: "PICKEDUP",
	5: "COMPLETE",
}

type ScannerType int32

const (
	ScannerTypeMobile ScannerType = iota
	ScannerTypeLocker
	ScannerTypeFacility
	ScannerTypeUnderbelly
)

var ScannerTypeName = map[int32]string{
	0: "MOBILE",
	1: "LOCKER",
	2: "FACILITY",
	3: "UNDERBELLY",
}

type ScannerStatus int32

const (
	ScannerStatusActive ScannerStatus = iota
	ScannerStatusDisabled
)

var ScannerStatusName = map[int32]string{
	0: "ACTIVE",
	1: "DISABLED",
}

type AuthMethod int32

const (
	AuthMethodOAuthGoogle AuthMethod = iota
	AuthMethodOAuthFacebook
	AuthMethodOAuthAzureAD
	AuthMethodLocal
)

var AuthMethodName = map[int32]string{
	0: "OAUTH_GOOGLE",
	1: "OAUTH_FACEBOOK",
	2: "OAUTH_AZURE_AD",
	3: "LOCAL",
}

type GroupType int32

const (
	GroupTypeDisplay GroupType = iota
	GroupTypeAcl
	GroupTypeSettings
)

var GroupTypeName = map[int32]string{
	0: "DISPLAY",
	1: "ACL",
	2: "SETTINGS",
}

type VertiportData struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	GeoLocation *GeoPolygonZ           `json:"geo_location,omitempty"`
	Schedule    *string                `json:"schedule,omitempty"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type VertipadData struct {
	VertiportId string                 `json:"vertiport_id"`
	Name        string                 `json:"name"`
	GeoLocation *GeoPointZ             `json:"geo_location,omitempty"`
	Enabled     bool                   `json:"enabled"`
	Occupied    bool                   `json:"occupied"`
	Schedule    *string                `json:"schedule,omitempty"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type VehicleData struct {
	VehicleModelId     string                 `json:"vehicle_model_id"`
	SerialNumber       string                 `json:"serial_number"`
	RegistrationNumber string                 `json:"registration_number"`
	Description        *string                `json:"description,omitempty"`
	AssetGroupId       *string                `json:"asset_group_id,omitempty"`
	Schedule           *string                `json:"schedule,omitempty"`
	HangarId           *string                `json:"hangar_id,omitempty"`
	HangarBayId        *string                `json:"hangar_bay_id,omitempty"`
	MaxPayloadGrams    *int64                 `json:"max_payload_grams,omitempty"`
	LastMaintenance    *timestamppb.Timestamp `json:"last_maintenance,omitempty"`
	NextMaintenance    *timestamppb.Timestamp `json:"next_maintenance,omitempty"`
	CreatedAt          *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt          *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type PilotData struct {
	FirstName string                 `json:"first_name"`
	LastName  string                 `json:"last_name"`
	CreatedAt *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type FlightPlanData struct {
	PilotId               string                 `json:"pilot_id"`
	VehicleId             string                 `json:"vehicle_id"`
	Path                  *GeoLineStringZ        `json:"path,omitempty"`
	WeatherConditions     *string                `json:"weather_conditions,omitempty"`
	OriginVertiportId     *string                `json:"origin_vertiport_id,omitempty"`
	OriginVertipadId      string                 `json:"origin_vertipad_id"`
	TargetVertiportId     *string                `json:"target_vertiport_id,omitempty"`
	TargetVertipadId      string                 `json:"target_vertipad_id"`
	OriginTimeslotStart   *timestamppb.Timestamp `json:"origin_timeslot_start,omitempty"`
	OriginTimeslotEnd     *timestamppb.Timestamp `json:"origin_timeslot_end,omitempty"`
	TargetTimeslotStart   *timestamppb.Timestamp `json:"target_timeslot_start,omitempty"`
	TargetTimeslotEnd     *timestamppb.Timestamp `json:"target_timeslot_end,omitempty"`
	ActualDepartureTime   *timestamppb.Timestamp `json:"actual_departure_time,omitempty"`
	ActualArrivalTime     *timestamppb.Timestamp `json:"actual_arrival_time,omitempty"`
	FlightReleaseApproval *timestamppb.Timestamp `json:"flight_release_approval,omitempty"`
	FlightPlanSubmitted   *timestamppb.Timestamp `json:"flight_plan_submitted,omitempty"`
	ApprovedById          *string                `json:"approved_by_id,omitempty"`
	FlightStatus          FlightStatus           `json:"flight_status"`
	FlightPriority        FlightPriority         `json:"flight_priority"`
	CreatedAt             *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt             *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

// FlightPlanParcelData is carried by the flight plan / parcel join.
type FlightPlanParcelData struct {
	Acquire bool `json:"acquire"`
	Deliver bool `json:"deliver"`
}

type ParcelData struct {
	UserId      string                 `json:"user_id"`
	WeightGrams int64                  `json:"weight_grams"`
	Status      ParcelStatus           `json:"status"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type ScannerData struct {
	OrganizationId string                 `json:"organization_id"`
	ScannerType    ScannerType            `json:"scanner_type"`
	ScannerStatus  ScannerStatus          `json:"scanner_status"`
	CreatedAt      *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt      *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type UserData struct {
	AuthMethod  AuthMethod             `json:"auth_method"`
	DisplayName string                 `json:"display_name"`
	Email       string                 `json:"email"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type GroupData struct {
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	GroupType     GroupType              `json:"group_type"`
	ParentGroupId *string                `json:"parent_group_id,omitempty"`
	CreatedAt     *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt     *timestamppb.Timestamp `json:"updated_at,omitempty"`
}
