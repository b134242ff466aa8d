package repositories

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"

	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/models/entities"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type KeysRepo struct {
	db *sqlx.DB
}

func NewApiKeysRepo(db *sqlx.DB) *KeysRepo {
	return &KeysRepo{db}
}

// HashKey returns the hex sha256 stored in api_keys.key_hash
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// GetByKey looks up a raw key. Unknown keys return nil, nil.
func (r *KeysRepo) GetByKey(ctx context.Context, key string) (*entities.ApiKey, error) {
	var keyRes entities.ApiKey

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(constants.GetApiKeyByHash), HashKey(key)).StructScan(&keyRes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &keyRes, nil
}

// Create stores the hash of a raw key and returns the new row id
func (r *KeysRepo) Create(ctx context.Context, key string, label string, role constants.APIRole) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(constants.InsertApiKey), id, HashKey(key), label, role)
	if err != nil {
		return "", err
	}
	return id, nil
}
