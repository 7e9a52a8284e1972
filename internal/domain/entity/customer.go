package entity

import "time"

// Customer representa un cliente del workspace (opcional en cada venta).
type Customer struct {
	ID          string
	WorkspaceID string
	Name        string
	Email       string
	Phone       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
