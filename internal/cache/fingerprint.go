package cache

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
)

// Fingerprint returns a short hex digest of the value's canonical JSON form.
// The value is round-tripped through encoding/json so that struct field order
// and map iteration order cannot influence the digest. The digest is FNV-1a
// and detects corruption only; it offers no protection against a deliberate
// attacker.
func Fingerprint(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: marshal: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("fingerprint: canonicalize: %w", err)
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("fingerprint: canonicalize: %w", err)
	}

	digest := fnv.New64a()
	_, _ = digest.Write(canonical)
	return fmt.Sprintf("%016x", digest.Sum64()), nil
}
