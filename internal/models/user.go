package models

import "time"

// User roles. Customers never receive product alerts.
const (
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
	RoleCustomer = "customer"
)

type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"user_type"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}
