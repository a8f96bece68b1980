package bigint

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"
)

// Int is a non-negative arbitrary-precision integer that persists as a
// decimal(65,0) column and travels over JSON as a quoted decimal string.
type Int big.Int

func New(x int64) *Int { return (*Int)(big.NewInt(x)) }

// From copies b; a nil b yields zero.
func From(b *big.Int) *Int {
	if b == nil {
		return New(0)
	}
	return (*Int)(new(big.Int).Set(b))
}

func Parse(s string) (*Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("bigint: invalid decimal %q", s)
	}
	return (*Int)(v), nil
}

// Big exposes the value as *big.Int. The result aliases i, so in-place
// mutations write through to the stored value.
func (i *Int) Big() *big.Int {
	if i == nil {
		return new(big.Int)
	}
	return (*big.Int)(i)
}

func (i *Int) String() string { return i.Big().String() }

func (i *Int) Value() (driver.Value, error) { return i.Big().String(), nil }

func (i *Int) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		i.Big().SetInt64(0)
		return nil
	case int64:
		i.Big().SetInt64(v)
		return nil
	case []byte:
		return i.setString(string(v))
	case string:
		return i.setString(v)
	default:
		return fmt.Errorf("bigint: cannot scan %T", src)
	}
}

func (i *Int) setString(s string) error {
	// mysql decimal columns may carry a trailing fraction, e.g. "42.000000"
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		s = s[:dot]
	}
	if _, ok := i.Big().SetString(s, 10); !ok {
		return fmt.Errorf("bigint: invalid decimal %q", s)
	}
	return nil
}

func (Int) GormDataType() string { return "decimal(65,0)" }

func (i *Int) MarshalJSON() ([]byte, error) {
	return []byte(`"` + i.String() + `"`), nil
}

func (i *Int) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		i.Big().SetInt64(0)
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return fmt.Errorf("bigint: invalid decimal %q", s)
	}
	i.Big().Set(v)
	return nil
}
