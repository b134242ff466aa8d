package transform

import (
	"errors"
	"strings"
	"time"

	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/models/entities"
	gormModels "multipark/backoffice/internal/models/gorm"
)

// ErrMissingExternalID is returned when a legacy document has no client id to key the upsert on.
var ErrMissingExternalID = errors.New(constants.GetErrorMessage(constants.ErrCodeMissingExternalID))

// ToRelational maps a legacy document to a relational row. Lenient fields never fail;
// the Report names the ones that were present but had to be defaulted or passed through.
func ToRelational(ext *entities.ExternalReservation) (*gormModels.Reservation, Report, error) {
	var report Report
	if ext == nil || strings.TrimSpace(ext.IDClient) == "" {
		return nil, report, ErrMissingExternalID
	}

	res := &gormModels.Reservation{
		ExternalID:     strings.TrimSpace(ext.IDClient),
		City:           strings.ToLower(ext.City),
		Brand:          strings.ToLower(ext.Brand),
		LicensePlate:   strings.ToUpper(strings.TrimSpace(ext.LicensePlate)),
		ClientName:     strings.TrimSpace(ext.Name),
		ClientEmail:    strings.TrimSpace(ext.Email),
		ClientPhone:    strings.TrimSpace(ext.PhoneNumber),
		ParkingType:    ext.ParkingType,
		PickupDriver:   ext.CondutorRecolha,
		DeliveryDriver: ext.CondutorEntrega,
		ActionUser:     ext.ActionUser,
		SyncStatus:     constants.SyncStatusSynced,
	}

	res.BookingDatetime = track(&report, "bookingDate", ParseLegacyDate(ext.BookingDate))
	res.CheckInDatetime = track(&report, "checkIn", ParseLegacyDate(ext.CheckIn))
	res.CheckOutDatetime = track(&report, "checkOut", ParseLegacyDate(ext.CheckOut))
	res.ActionDate = track(&report, "actionDate", ParseLegacyDate(ext.ActionDate))

	res.BookingPrice = track(&report, "bookingPrice", ParsePrice(ext.BookingPrice))
	res.ParkingPrice = track(&report, "parkingPrice", ParsePrice(ext.ParkingPrice))
	res.DeliveryPrice = track(&report, "deliveryPrice", ParsePrice(ext.DeliveryPrice))

	res.Status = track(&report, "stats", MapStatusToRelational(ext.Stats))

	if ext.LastUpdate != nil {
		t := ext.LastUpdate.UTC()
		res.SourceUpdatedAt = &t
	}

	return res, report, nil
}

// ToLegacyUpdate builds the write-back document for a locally changed row.
func ToLegacyUpdate(res *gormModels.Reservation) entities.LegacyUpdate {
	update := entities.LegacyUpdate{
		Stats:           MapStatusToLegacy(res.Status).Value,
		CondutorRecolha: res.PickupDriver,
		CondutorEntrega: res.DeliveryDriver,
		CheckIn:         FormatLegacyDate(res.CheckInDatetime),
		CheckOut:        FormatLegacyDate(res.CheckOutDatetime),
		ActionUser:      res.ActionUser,
		ActionDate:      FormatLegacyDate(res.ActionDate),
		LastUpdate:      res.UpdatedAt.UTC(),
	}
	if res.UpdatedAt.IsZero() {
		update.LastUpdate = time.Now().UTC()
	}
	return update
}

// ToExternal is the full inverse of ToRelational.
func ToExternal(res *gormModels.Reservation) *entities.ExternalReservation {
	ext := &entities.ExternalReservation{
		IDClient:        res.ExternalID,
		Stats:           MapStatusToLegacy(res.Status).Value,
		LicensePlate:    res.LicensePlate,
		Name:            res.ClientName,
		Email:           res.ClientEmail,
		PhoneNumber:     res.ClientPhone,
		BookingDate:     FormatLegacyDate(res.BookingDatetime),
		CheckIn:         FormatLegacyDate(res.CheckInDatetime),
		CheckOut:        FormatLegacyDate(res.CheckOutDatetime),
		BookingPrice:    res.BookingPrice,
		ParkingPrice:    res.ParkingPrice,
		DeliveryPrice:   res.DeliveryPrice,
		ParkingType:     res.ParkingType,
		CondutorRecolha: res.PickupDriver,
		CondutorEntrega: res.DeliveryDriver,
		ActionUser:      res.ActionUser,
		ActionDate:      FormatLegacyDate(res.ActionDate),
		City:            res.City,
		Brand:           res.Brand,
	}
	if res.SourceUpdatedAt != nil {
		t := res.SourceUpdatedAt.UTC()
		ext.LastUpdate = &t
	}
	return ext
}
