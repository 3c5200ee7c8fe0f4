package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ScopeCashClosure partitions idempotency keys used by cash closure declarations.
const ScopeCashClosure = "cash_closure"

// IdempotencyRecord maps (tenant, scope, key) to the response produced for it.
// Payload is written once and never mutated.
type IdempotencyRecord struct {
	TenantID    string
	Scope       string
	Key         string
	RequestHash string
	Payload     []byte
	CreatedAt   time.Time
}

// closurePayload is the stored response of a declaration. The replay flag is
// not part of it so the bytes are identical across the original and replays.
type closurePayload struct {
	Record    *ClosureRecord `json:"record"`
	TotalDiff Money          `json:"total_diff"`
}

// EncodeClosurePayload serializes the response stored for an idempotency key.
func EncodeClosurePayload(record *ClosureRecord) ([]byte, error) {
	return json.Marshal(closurePayload{Record: record, TotalDiff: record.TotalDiff()})
}

// DecodeClosurePayload restores the record stored for an idempotency key.
func DecodeClosurePayload(payload []byte) (*ClosureRecord, error) {
	var p closurePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode closure payload: %w", err)
	}
	if p.Record == nil {
		return nil, fmt.Errorf("decode closure payload: missing record")
	}
	return p.Record, nil
}

// DeclarationHash fingerprints the logical request behind an idempotency key.
// Reusing a key for a different tenant-day or different amounts changes the hash.
func DeclarationHash(tenantID string, day BusinessDay, declared Amounts) string {
	h := sha256.New()
	h.Write([]byte(tenantID))
	h.Write([]byte{0})
	h.Write([]byte(day.String()))
	for _, c := range allChannels {
		h.Write([]byte{0})
		h.Write([]byte(c))
		h.Write([]byte{'='})
		h.Write([]byte(strconv.FormatInt(int64(declared[c]), 10)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
