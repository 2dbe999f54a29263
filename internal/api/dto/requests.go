package dto

// LocationPayload is a geographic point in request and response bodies. The
// coordinates carry range checks only: required would reject a legitimate
// zero latitude or longitude.
type LocationPayload struct {
	Latitude  float64 `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" binding:"gte=-180,lte=180"`
	Address   string  `json:"address"`
}

// CreateRideRequest represents a request to create a new ride
type CreateRideRequest struct {
	StartLocation LocationPayload `json:"start_location" binding:"required"`
	EndLocation   LocationPayload `json:"end_location" binding:"required"`
	DistanceKM    float64         `json:"distance_km" binding:"gte=0"`
}

// RejectRideRequest carries the mandatory rejection reason
type RejectRideRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AssignRideRequest binds a driver and vehicle to an approved ride
type AssignRideRequest struct {
	DriverID  string `json:"driver_id" binding:"required,uuid"`
	VehicleID string `json:"vehicle_id" binding:"required,uuid"`
}

// CompleteRideRequest carries optional completion actuals
type CompleteRideRequest struct {
	ActualEndLocation *LocationPayload `json:"actual_end_location,omitempty"`
	ActualDistanceKM  *float64         `json:"actual_distance_km,omitempty"`
}

// RateRideRequest records the requester's one-time rating
type RateRideRequest struct {
	Rating int `json:"rating" binding:"required,gte=1,lte=5"`
}

// UpdateLocationRequest represents a driver location update
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" binding:"gte=-180,lte=180"`
}

// CreateDriverRequest registers a driver
type CreateDriverRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

// CreateVehicleRequest registers a fleet vehicle
type CreateVehicleRequest struct {
	Plate string `json:"plate" binding:"required"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year" binding:"omitempty,gte=1980"`
}

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse wraps a message plus optional payload
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
