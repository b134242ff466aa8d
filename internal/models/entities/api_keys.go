package entities

import (
	"time"

	"multipark/backoffice/internal/constants"
)

type ApiKey struct {
	ID        string            `db:"id"`
	Label     string            `db:"label"`
	Role      constants.APIRole `db:"role"`
	Status    bool              `db:"status"`
	CreatedAt time.Time         `db:"created_at"`
}
