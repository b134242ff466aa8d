package constants

import (
	"database/sql/driver"
	"fmt"
)

// APIRole mirrors the api_keys.role column
type APIRole string

const (
	RoleAnon    APIRole = "anon"
	RoleService APIRole = "service"
)

// Stringer ­– convenient for fmt / logs
func (r APIRole) String() string { return string(r) }

// CanWrite reports whether the role may mutate records or trigger a sync.
func (r APIRole) CanWrite() bool { return r == RoleService }

// Scan implements the sql.Scanner interface
func (r *APIRole) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = APIRole(v)
	case []byte:
		*r = APIRole(v)
	default:
		return fmt.Errorf("APIRole: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r APIRole) Value() (driver.Value, error) { return string(r), nil }
