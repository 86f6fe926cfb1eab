package gateway

import (
	"github.com/labstack/echo/v4"
)

// Headers a mobile client may send alongside any request.
const (
	HeaderDeviceID   = "X-Device-ID"
	HeaderAppVersion = "X-App-Version"
)

// DeviceInfo is the mobile metadata taken from request headers.
type DeviceInfo struct {
	DeviceID   string
	AppVersion string
}

func deviceInfoFrom(c echo.Context) DeviceInfo {
	h := c.Request().Header
	return DeviceInfo{
		DeviceID:   h.Get(HeaderDeviceID),
		AppVersion: h.Get(HeaderAppVersion),
	}
}

// deviceID prefers the body value over the X-Device-ID header.
func (d DeviceInfo) deviceID(fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return d.DeviceID
}

// MobileRegisterRequest is the mobile registration envelope.
type MobileRegisterRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FullName  string `json:"full_name" validate:"required"`
	DeviceID  string `json:"device_id,omitempty"`
	PushToken string `json:"push_token,omitempty"`
}

// MobileLoginRequest is the mobile login envelope.
type MobileLoginRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	DeviceID  string `json:"device_id,omitempty"`
	PushToken string `json:"push_token,omitempty"`
}

// MobileReservationRequest is the mobile booking envelope. UserEmail may be
// omitted; the session's email is used then. DeviceInfo is logged with the
// booking and not forwarded.
type MobileReservationRequest struct {
	FacilityID string            `json:"facility_id" validate:"required"`
	UserEmail  string            `json:"user_email,omitempty"`
	StartTime  string            `json:"start_time" validate:"required"`
	EndTime    string            `json:"end_time" validate:"required"`
	Notes      *string           `json:"notes,omitempty"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
}

// NotificationRegisterRequest registers a device for push notifications.
type NotificationRegisterRequest struct {
	PushToken string `json:"push_token" validate:"required"`
	DeviceID  string `json:"device_id,omitempty"`
}

// authRegisterPayload is what the auth service accepts on POST /register.
type authRegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// authLoginPayload is what the auth service accepts on POST /login.
type authLoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// reservationPayload is the reservation service's camelCase contract.
type reservationPayload struct {
	FacilityID string `json:"facilityId"`
	UserEmail  string `json:"userEmail"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Notes      string `json:"notes"`
}

func (r MobileReservationRequest) toUpstream() reservationPayload {
	notes := ""
	if r.Notes != nil {
		notes = *r.Notes
	}
	return reservationPayload{
		FacilityID: r.FacilityID,
		UserEmail:  r.UserEmail,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Notes:      notes,
	}
}

// augment adds extras to body without replacing keys the upstream returned.
func augment(body map[string]any, extras map[string]any) map[string]any {
	if body == nil {
		body = make(map[string]any, len(extras))
	}
	for k, v := range extras {
		if _, exists := body[k]; !exists {
			body[k] = v
		}
	}
	return body
}
