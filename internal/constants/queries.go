package constants

// Queries run through sqlx. Placeholders are written as ? and rebound per driver.
const (
	GetApiKeyByHash = `
	SELECT id, label, role, status, created_at FROM api_keys WHERE key_hash = ?
	`

	InsertApiKey = `
	INSERT INTO api_keys (id, key_hash, label, role, status) VALUES (?, ?, ?, ?, TRUE)
	`

	ReservaColumns = `id, external_id, city, brand, license_plate, client_name, client_email,
	client_phone, booking_datetime, check_in_datetime, check_out_datetime, booking_price,
	parking_price, delivery_price, parking_type, status, pickup_driver, delivery_driver,
	action_user, action_date, sync_status, sync_error, last_synced_at, source_updated_at,
	created_at, updated_at`

	UpsertReserva = `
	INSERT INTO reservas (id, external_id, city, brand, license_plate, client_name, client_email,
		client_phone, booking_datetime, check_in_datetime, check_out_datetime, booking_price,
		parking_price, delivery_price, parking_type, status, pickup_driver, delivery_driver,
		action_user, action_date, sync_status, sync_error, last_synced_at, source_updated_at,
		created_at, updated_at)
	VALUES (:id, :external_id, :city, :brand, :license_plate, :client_name, :client_email,
		:client_phone, :booking_datetime, :check_in_datetime, :check_out_datetime, :booking_price,
		:parking_price, :delivery_price, :parking_type, :status, :pickup_driver, :delivery_driver,
		:action_user, :action_date, :sync_status, :sync_error, :last_synced_at, :source_updated_at,
		:created_at, :updated_at)
	ON CONFLICT (external_id) DO UPDATE
	SET city = EXCLUDED.city,
		brand = EXCLUDED.brand,
		license_plate = EXCLUDED.license_plate,
		client_name = EXCLUDED.client_name,
		client_email = EXCLUDED.client_email,
		client_phone = EXCLUDED.client_phone,
		booking_datetime = EXCLUDED.booking_datetime,
		check_in_datetime = EXCLUDED.check_in_datetime,
		check_out_datetime = EXCLUDED.check_out_datetime,
		booking_price = EXCLUDED.booking_price,
		parking_price = EXCLUDED.parking_price,
		delivery_price = EXCLUDED.delivery_price,
		parking_type = EXCLUDED.parking_type,
		status = EXCLUDED.status,
		pickup_driver = EXCLUDED.pickup_driver,
		delivery_driver = EXCLUDED.delivery_driver,
		action_user = EXCLUDED.action_user,
		action_date = EXCLUDED.action_date,
		source_updated_at = EXCLUDED.source_updated_at,
		updated_at = EXCLUDED.updated_at
	WHERE reservas.sync_status = 'synced'
	`

	UpdateReservaSyncStatus = `
	UPDATE reservas
	SET sync_status = ?, sync_error = ?, last_synced_at = COALESCE(?, last_synced_at), updated_at = ?
	WHERE id = ?
	`

	CountReservasBySyncStatus = `SELECT sync_status, COUNT(*) AS count FROM reservas GROUP BY sync_status`
)
