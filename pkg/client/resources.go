package client

import "github.com/nrjais/aerostore/pkg/api"

func (c *Client) Vertiports() *ResourceClient[api.VertiportData] {
	return NewResourceClient[api.VertiportData](c, "vertiport")
}

func (c *Client) Vertipads() *ResourceClient[api.VertipadData] {
	return NewResourceClient[api.VertipadData](c, "vertipad")
}

func (c *Client) Vehicles() *ResourceClient[api.VehicleData] {
	return NewResourceClient[api.VehicleData](c, "vehicle")
}

func (c *Client) Pilots() *ResourceClient[api.PilotData] {
	return NewResourceClient[api.PilotData](c, "pilot")
}

func (c *Client) FlightPlans() *ResourceClient[api.FlightPlanData] {
	return NewResourceClient[api.FlightPlanData](c, "flight_plan")
}

func (c *Client) Parcels() *ResourceClient[api.ParcelData] {
	return NewResourceClient[api.ParcelData](c, "parcel")
}

func (c *Client) Scanners() *ResourceClient[api.ScannerData] {
	return NewResourceClient[api.ScannerData](c, "scanner")
}

func (c *Client) Users() *ResourceClient[api.UserData] {
	return NewResourceClient[api.UserData](c, "user")
}

func (c *Client) Groups() *ResourceClient[api.GroupData] {
	return NewResourceClient[api.GroupData](c, "group")
}

func (c *Client) FlightPlanParcels() *LinkedResourceClient[api.FlightPlanParcelData] {
	return NewLinkedResourceClient[api.FlightPlanParcelData](c, "flight_plan_parcel")
}

func (c *Client) GroupUsers() *LinkClient[api.UserData] {
	return NewLinkClient[api.UserData](c, "group_user")
}

func (c *Client) GroupVehicles() *LinkClient[api.VehicleData] {
	return NewLinkClient[api.VehicleData](c, "group_vehicle")
}

func (c *Client) GroupVertiports() *LinkClient[api.VertiportData] {
	return NewLinkClient[api.VertiportData](c, "group_vertiport")
}

func (c *Client) GroupVertipads() *LinkClient[api.VertipadData] {
	return NewLinkClient[api.VertipadData](c, "group_vertipad")
}
