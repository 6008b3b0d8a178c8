package parcel

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/parcelmap/internal/domain"
)

// Fields lists the attribute names tried, in order, for each key component.
type Fields struct {
	VDC    []string `yaml:"vdc"`
	Ward   []string `yaml:"ward"`
	Parcel []string `yaml:"parcel"`
}

// DefaultFields covers the casings seen across exported cadastral datasets.
func DefaultFields() Fields {
	return Fields{
		VDC:    []string{"VDC", "vdc", "Vdc", "VDC_NAME"},
		Ward:   []string{"WARDNO", "wardno", "WardNo", "WARD_NO", "ward_no", "WARD"},
		Parcel: []string{"PARCELNO", "parcelno", "ParcelNo", "PARCEL_NO", "parcel_no", "PARCEL"},
	}
}

// WithDefaults fills empty alias lists from DefaultFields.
func (f Fields) WithDefaults() Fields {
	d := DefaultFields()
	if len(f.VDC) == 0 {
		f.VDC = d.VDC
	}
	if len(f.Ward) == 0 {
		f.Ward = d.Ward
	}
	if len(f.Parcel) == 0 {
		f.Parcel = d.Parcel
	}
	return f
}

// ExtractKey reads the key triple from an attribute record.
func (f Fields) ExtractKey(props map[string]any) (Key, error) {
	vdc, ok := lookup(props, f.VDC)
	if !ok {
		return Key{}, fmt.Errorf("%w: no VDC attribute (tried %v)", domain.ErrInvalidQuery, f.VDC)
	}
	ward, ok := lookup(props, f.Ward)
	if !ok {
		return Key{}, fmt.Errorf("%w: no ward attribute (tried %v)", domain.ErrInvalidQuery, f.Ward)
	}
	parcelNo, ok := lookup(props, f.Parcel)
	if !ok {
		return Key{}, fmt.Errorf("%w: no parcel attribute (tried %v)", domain.ErrInvalidQuery, f.Parcel)
	}
	return Key{VDC: vdc, Ward: ward, Parcel: parcelNo}, nil
}

func lookup(props map[string]any, aliases []string) (string, bool) {
	for _, a := range aliases {
		if v, ok := props[a]; ok {
			if s := NormalizeValue(v); s != "" {
				return s, true
			}
		}
	}
	// fall back to a case-insensitive scan
	for k, v := range props {
		for _, a := range aliases {
			if strings.EqualFold(k, a) {
				if s := NormalizeValue(v); s != "" {
					return s, true
				}
			}
		}
	}
	return "", false
}

// NormalizeValue canonicalizes an attribute or query value: trims whitespace and renders
// integral numbers without leading zeros or fraction, so 7, "7", "007" and 7.0 compare equal.
func NormalizeValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return normalizeString(x)
	case json.Number:
		return normalizeString(x.String())
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return ""
	default:
		return normalizeString(fmt.Sprint(x))
	}
}

// normalizeString strips leading zeros from plain decimal integers. A fraction of only
// zeros, as DBF numeric fields carry, is dropped too. Anything else is kept verbatim so
// long IDs never lose digits.
func normalizeString(s string) string {
	s = strings.TrimSpace(s)
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if !allDigits(intPart) || (hasFrac && strings.Trim(frac, "0") != "") {
		return s
	}
	if t := strings.TrimLeft(intPart, "0"); t != "" {
		return t
	}
	return "0"
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
