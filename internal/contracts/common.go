package contracts

import (
	"bytes"
	"encoding/json"

	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NullableID tells an absent field apart from an explicit null.
type NullableID struct {
	Set   bool
	Value *string
}

func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// Parse returns whether the field was sent and the id it carries, nil for null or "".
func (n NullableID) Parse(field string) (bool, *ulid.ULID, error) {
	if !n.Set {
		return false, nil, nil
	}
	id, err := ParseOptionalID(field, n.Value)
	return true, id, err
}

func ParseOptionalID(field string, value *string) (*ulid.ULID, error) {
	id, err := pkg.ParseULIDPtr(value)
	if err != nil {
		return nil, appErrors.NewValidationError(field, field+" is not a valid id")
	}
	return id, nil
}
