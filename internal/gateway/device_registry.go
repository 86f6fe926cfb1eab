package gateway

import (
	"context"
	"sort"

	"facilityhub/internal/cache"
)

const deviceKeyPrefix = "devices:"

// DeviceRegistry remembers which devices of a user accept push notifications.
type DeviceRegistry interface {
	Register(ctx context.Context, email, deviceID, pushToken string) error
	Devices(ctx context.Context, email string) ([]Device, error)
}

// Device is one registered device.
type Device struct {
	DeviceID  string `json:"device_id"`
	PushToken string `json:"-"`
}

type redisDeviceRegistry struct {
	cache *cache.Client
}

// NewDeviceRegistry keeps one redis hash per user, device id -> push token.
// Registrations are best-effort and vanish if redis is unavailable.
func NewDeviceRegistry(cache *cache.Client) DeviceRegistry {
	return &redisDeviceRegistry{cache: cache}
}

func (r *redisDeviceRegistry) Register(ctx context.Context, email, deviceID, pushToken string) error {
	return r.cache.HSet(ctx, deviceKeyPrefix+email, deviceID, pushToken)
}

// Devices returns the user's devices ordered by id.
func (r *redisDeviceRegistry) Devices(ctx context.Context, email string) ([]Device, error) {
	entries, err := r.cache.HGetAll(ctx, deviceKeyPrefix+email)
	if err != nil {
		return nil, err
	}
	devices := make([]Device, 0, len(entries))
	for id, token := range entries {
		devices = append(devices, Device{DeviceID: id, PushToken: token})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].DeviceID < devices[j].DeviceID })
	return devices, nil
}
