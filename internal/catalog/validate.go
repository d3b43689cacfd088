package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotInCatalog is returned when a name is not a catalog member.
// This is a configuration error, distinct from input validation failure.
var ErrNotInCatalog = errors.New("tool not in catalog")

// ValidationError reports an input that failed a tool's structural contract.
// Detail names the offending field or constraint.
type ValidationError struct {
	Tool   Name
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Tool, e.Detail)
}

// ValidateInput is phase one of the boundary contract: structural validation
// of raw JSON against the tool's declared schema. It performs no default
// filling and no decoding.
func (c *Catalog) ValidateInput(n Name, raw json.RawMessage) error {
	e, ok := c.entries[n]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotInCatalog, n)
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return &ValidationError{Tool: n, Detail: fmt.Sprintf("malformed JSON: %v", err)}
	}
	if err := e.resolved.Validate(instance); err != nil {
		return &ValidationError{Tool: n, Detail: err.Error()}
	}
	return nil
}

// Decode runs both phases: structural validation, then typed decoding with
// collection defaults filled. The returned payload satisfies the tool's
// contract — every declared array field is non-nil.
func (c *Catalog) Decode(n Name, raw json.RawMessage) (Payload, error) {
	if err := c.ValidateInput(n, raw); err != nil {
		return nil, err
	}

	p := NewPayload(n)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotInCatalog, n)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		// Validation passed, so a decode failure here is a payload/schema
		// mismatch in this package, not a model error.
		return nil, fmt.Errorf("decoding %s payload: %w", n, err)
	}
	p.Normalize()
	return p, nil
}
