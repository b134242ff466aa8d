package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// Reservation is the normalized row for one real-world reservation.
// The same struct is scanned by sqlx for the Ferramentas "reservas" table, hence the db tags.
type Reservation struct {
	ID         string `gorm:"column:id;primaryKey;type:uuid" db:"id" json:"id"`
	ExternalID string `gorm:"column:external_id;type:varchar(64);not null;uniqueIndex" db:"external_id" json:"external_id"`
	City       string `gorm:"column:city;type:varchar(50);index:idx_reservations_partition" db:"city" json:"city"`
	Brand      string `gorm:"column:brand;type:varchar(50);index:idx_reservations_partition" db:"brand" json:"brand"`

	LicensePlate string `gorm:"column:license_plate;type:varchar(20)" db:"license_plate" json:"license_plate"`
	ClientName   string `gorm:"column:client_name;type:varchar(200)" db:"client_name" json:"client_name"`
	ClientEmail  string `gorm:"column:client_email;type:varchar(200)" db:"client_email" json:"client_email"`
	ClientPhone  string `gorm:"column:client_phone;type:varchar(50)" db:"client_phone" json:"client_phone"`

	BookingDatetime  *time.Time `gorm:"column:booking_datetime" db:"booking_datetime" json:"booking_datetime"`
	CheckInDatetime  *time.Time `gorm:"column:check_in_datetime" db:"check_in_datetime" json:"check_in_datetime"`
	CheckOutDatetime *time.Time `gorm:"column:check_out_datetime" db:"check_out_datetime" json:"check_out_datetime"`

	BookingPrice  float64 `gorm:"column:booking_price;type:numeric(10,2);not null;default:0" db:"booking_price" json:"booking_price"`
	ParkingPrice  float64 `gorm:"column:parking_price;type:numeric(10,2);not null;default:0" db:"parking_price" json:"parking_price"`
	DeliveryPrice float64 `gorm:"column:delivery_price;type:numeric(10,2);not null;default:0" db:"delivery_price" json:"delivery_price"`

	ParkingType    string     `gorm:"column:parking_type;type:varchar(50)" db:"parking_type" json:"parking_type"`
	Status         string     `gorm:"column:status;type:varchar(50);index" db:"status" json:"status"`
	PickupDriver   string     `gorm:"column:pickup_driver;type:varchar(100)" db:"pickup_driver" json:"pickup_driver"`
	DeliveryDriver string     `gorm:"column:delivery_driver;type:varchar(100)" db:"delivery_driver" json:"delivery_driver"`
	ActionUser     string     `gorm:"column:action_user;type:varchar(100)" db:"action_user" json:"action_user"`
	ActionDate     *time.Time `gorm:"column:action_date" db:"action_date" json:"action_date"`

	// Outbound sync flag: pending, synced or error
	SyncStatus      string     `gorm:"column:sync_status;type:varchar(10);not null;default:'synced';index" db:"sync_status" json:"sync_status"`
	SyncError       *string    `gorm:"column:sync_error;type:text" db:"sync_error" json:"sync_error,omitempty"`
	LastSyncedAt    *time.Time `gorm:"column:last_synced_at" db:"last_synced_at" json:"last_synced_at"`
	SourceUpdatedAt *time.Time `gorm:"column:source_updated_at" db:"source_updated_at" json:"source_updated_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" db:"created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" db:"updated_at" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Reservation) TableName() string {
	return "reservations"
}

// BeforeCreate assigns the primary key when the caller left it empty
func (r *Reservation) BeforeCreate(tx *gormlib.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// UpsertColumns are the columns an upsert from the legacy store overwrites.
// sync_status, sync_error and last_synced_at belong to the outbound direction and are left alone.
var UpsertColumns = []string{
	"city", "brand", "license_plate", "client_name", "client_email", "client_phone",
	"booking_datetime", "check_in_datetime", "check_out_datetime",
	"booking_price", "parking_price", "delivery_price",
	"parking_type", "status", "pickup_driver", "delivery_driver",
	"action_user", "action_date", "source_updated_at", "updated_at",
}
