package store

import (
	"context"
	"strings"
)

// ResetIfStale borra todo el almacenamiento una unica vez cuando el esquema
// persistido no coincide con el actual. Devuelve true si hubo borrado.
func ResetIfStale(ctx context.Context, kv KV, schema string) (bool, error) {
	schema = strings.TrimSpace(schema)
	if schema == "" {
		return false, nil
	}
	current, ok, err := kv.Get(ctx, KeyStorageSchema)
	if err != nil {
		return false, err
	}
	if ok && current == schema {
		return false, nil
	}
	keys, err := kv.ListKeys(ctx)
	if err != nil {
		return false, err
	}
	stale := keys[:0]
	for _, k := range keys {
		if k != KeyStorageSchema {
			stale = append(stale, k)
		}
	}
	if len(stale) > 0 {
		if err := kv.RemoveMany(ctx, stale); err != nil {
			return false, err
		}
	}
	if err := kv.Set(ctx, KeyStorageSchema, schema); err != nil {
		return true, err
	}
	return true, nil
}
