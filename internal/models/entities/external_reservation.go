package entities

import (
	"fmt"
	"time"
)

// Partition identifies one (city, brand) slice of the legacy store
type Partition struct {
	City  string `json:"city"`
	Brand string `json:"brand"`
}

func (p Partition) String() string {
	return fmt.Sprintf("%s/%s", p.City, p.Brand)
}

// ExternalReservation is a reservation document as stored in the legacy document store.
// Dates are locale strings ("DD/MM/YYYY, HH:MM") and prices may be numbers or strings.
type ExternalReservation struct {
	IDClient     string `bson:"idClient" json:"idClient"`
	Stats        string `bson:"stats,omitempty" json:"stats,omitempty"`
	LicensePlate string `bson:"licensePlate,omitempty" json:"licensePlate,omitempty"`
	Name         string `bson:"name,omitempty" json:"name,omitempty"`
	Email        string `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber  string `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`

	BookingDate string `bson:"bookingDate,omitempty" json:"bookingDate,omitempty"`
	CheckIn     string `bson:"checkIn,omitempty" json:"checkIn,omitempty"`
	CheckOut    string `bson:"checkOut,omitempty" json:"checkOut,omitempty"`

	BookingPrice  interface{} `bson:"bookingPrice,omitempty" json:"bookingPrice,omitempty"`
	ParkingPrice  interface{} `bson:"parkingPrice,omitempty" json:"parkingPrice,omitempty"`
	DeliveryPrice interface{} `bson:"deliveryPrice,omitempty" json:"deliveryPrice,omitempty"`

	ParkingType     string `bson:"parkingType,omitempty" json:"parkingType,omitempty"`
	CondutorRecolha string `bson:"condutorRecolha,omitempty" json:"condutorRecolha,omitempty"`
	CondutorEntrega string `bson:"condutorEntrega,omitempty" json:"condutorEntrega,omitempty"`
	ActionUser      string `bson:"actionUser,omitempty" json:"actionUser,omitempty"`
	ActionDate      string `bson:"actionDate,omitempty" json:"actionDate,omitempty"`

	LastUpdate *time.Time `bson:"lastUpdate,omitempty" json:"lastUpdate,omitempty"`

	// Filled from the partition the document was read from
	City  string `bson:"-" json:"city,omitempty"`
	Brand string `bson:"-" json:"brand,omitempty"`
}

// LegacyUpdate is the subset of fields written back to the legacy store after a local change.
// The editable fields are always written so a cleared value reaches the legacy store.
// Stats keeps omitempty: the relational side never clears a status.
type LegacyUpdate struct {
	Stats           string    `bson:"stats,omitempty"`
	CondutorRecolha string    `bson:"condutorRecolha"`
	CondutorEntrega string    `bson:"condutorEntrega"`
	CheckIn         string    `bson:"checkIn"`
	CheckOut        string    `bson:"checkOut"`
	ActionUser      string    `bson:"actionUser"`
	ActionDate      string    `bson:"actionDate"`
	LastUpdate      time.Time `bson:"lastUpdate"`
}
