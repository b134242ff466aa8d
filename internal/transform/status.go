package transform

import "strings"

// Relational status vocabulary
const (
	StatusReserved   = "reservado"
	StatusConfirmed  = "confirmado"
	StatusPickingUp  = "em_recolha"
	StatusPickedUp   = "recolhido"
	StatusParked     = "em_parque"
	StatusDelivering = "em_entrega"
	StatusDelivered  = "entregue"
	StatusCancelled  = "cancelado"
	StatusNoShow     = "nao_compareceu"
)

// legacyToRelational is keyed by the lowercased legacy code.
var legacyToRelational = map[string]string{
	"reservado":      StatusReserved,
	"reserva":        StatusReserved,
	"confirmado":     StatusConfirmed,
	"em recolha":     StatusPickingUp,
	"a recolher":     StatusPickingUp,
	"recolhido":      StatusPickedUp,
	"em parque":      StatusParked,
	"parque":         StatusParked,
	"em entrega":     StatusDelivering,
	"a entregar":     StatusDelivering,
	"entregue":       StatusDelivered,
	"cancelado":      StatusCancelled,
	"cancelada":      StatusCancelled,
	"não compareceu": StatusNoShow,
	"nao compareceu": StatusNoShow,
}

// relationalToLegacy holds the canonical legacy spelling for each relational status.
var relationalToLegacy = map[string]string{
	StatusReserved:   "reservado",
	StatusConfirmed:  "confirmado",
	StatusPickingUp:  "em recolha",
	StatusPickedUp:   "recolhido",
	StatusParked:     "em parque",
	StatusDelivering: "em entrega",
	StatusDelivered:  "entregue",
	StatusCancelled:  "cancelado",
	StatusNoShow:     "não compareceu",
}

// MapStatusToRelational translates a legacy status code. Unknown codes pass through unchanged.
func MapStatusToRelational(code string) ParseResult[string] {
	return mapStatus(legacyToRelational, code)
}

// MapStatusToLegacy translates a relational status back. Unknown values pass through unchanged.
func MapStatusToLegacy(status string) ParseResult[string] {
	return mapStatus(relationalToLegacy, status)
}

func mapStatus(table map[string]string, in string) ParseResult[string] {
	key := strings.ToLower(strings.TrimSpace(in))
	if key == "" {
		return defaulted[string](in)
	}
	if mapped, ok := table[key]; ok {
		return parsed(mapped, in)
	}
	return ParseResult[string]{Value: in, Outcome: PassedThrough, Raw: in}
}

// IsRelationalStatus reports whether s belongs to the relational vocabulary
func IsRelationalStatus(s string) bool {
	_, ok := relationalToLegacy[s]
	return ok
}
