// Package domain provides definitions of all entities.
package domain

import "time"

// AccountUser identifies an owner of accounts.
type AccountUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
