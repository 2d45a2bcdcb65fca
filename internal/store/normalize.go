package store

import (
	"database/sql/driver"
	"math"
	"math/big"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	minInt64 = big.NewInt(math.MinInt64)
	maxInt64 = big.NewInt(math.MaxInt64)
)

// NormalizeValue converts driver values into plain JSON-friendly Go values.
// Integral numerics become int64, or decimal text when they overflow int64.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case pgtype.Numeric:
		return normalizeNumeric(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case float32:
		return normalizeFloat(float64(x))
	case float64:
		return normalizeFloat(x)
	case int32, int64, string, bool:
		return v
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return nil
		}
		if b, ok := dv.([]byte); ok {
			return string(b)
		}
		return dv
	default:
		return v
	}
}

func normalizeNumeric(n pgtype.Numeric) any {
	if !n.Valid {
		return nil
	}
	switch {
	case n.NaN:
		return "NaN"
	case n.InfinityModifier == pgtype.Infinity:
		return "Infinity"
	case n.InfinityModifier == pgtype.NegativeInfinity:
		return "-Infinity"
	}
	if n.Int != nil && n.Exp >= 0 {
		i := new(big.Int).Set(n.Int)
		if n.Exp > 0 {
			i.Mul(i, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil))
		}
		if i.Cmp(minInt64) >= 0 && i.Cmp(maxInt64) <= 0 {
			return i.Int64()
		}
		return i.String()
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return nil
	}
	return normalizeFloat(f.Float64)
}

// normalizeFloat spells NaN and the infinities the way Postgres prints them,
// since JSON has no number for them.
func normalizeFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}
