package pkg

import (
	"errors"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
)

func GenerateULIDObject() ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy())
}

func ParseULID(ulidStr string) (ulid.ULID, error) {
	if ulidStr == "" {
		return ulid.ULID{}, errors.New("ULID string cannot be empty")
	}

	parsedULID, err := ulid.Parse(ulidStr)
	if err != nil {
		return ulid.ULID{}, errors.New("invalid ULID format")
	}

	return parsedULID, nil
}

func IsEmptyULID(id ulid.ULID) bool {
	return id == ulid.ULID{}
}

func SetTimestamps() time.Time {
	return time.Now().UTC()
}

func ParseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParseULIDPtr accepts nil or "" as "no id".
func ParseULIDPtr(ulidStr *string) (*ulid.ULID, error) {
	if ulidStr == nil || *ulidStr == "" {
		return nil, nil
	}
	parsed, err := ParseULID(*ulidStr)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// ULIDPtrString is the column form of an optional id.
func ULIDPtrString(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func SameULID(a, b *ulid.ULID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
