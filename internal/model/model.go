package model

import (
	"strings"
	"time"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}

type CheckKind string

const (
	CheckIn  CheckKind = "IN"
	CheckOut CheckKind = "OUT"
)

// Valid reports whether k is exactly one of the known kinds. Matching is case-sensitive.
func (k CheckKind) Valid() bool {
	return k == CheckIn || k == CheckOut
}

type CheckEvent struct {
	ID        int64
	UserID    int64
	Type      CheckKind
	Timestamp time.Time
	Device    string
	Location  *string
}

const UnknownDevice = "unknown"

// ResolveDevice picks the explicit device label, then the declared user agent, then UnknownDevice.
func ResolveDevice(device, userAgent string) string {
	if device = strings.TrimSpace(device); device != "" {
		return device
	}
	if userAgent = strings.TrimSpace(userAgent); userAgent != "" {
		return userAgent
	}
	return UnknownDevice
}
