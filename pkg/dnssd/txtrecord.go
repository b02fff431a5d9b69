package dnssd

import (
	"fmt"
	"sort"
	"strings"
)

// TXTRecord is a map of TXT record key-value pairs.
type TXTRecord map[string]string

// Strings converts the record to "key=value" strings sorted by key.
// Keys with an empty value are emitted as "key=".
func (t TXTRecord) Strings() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(t))
	for _, k := range keys {
		result = append(result, fmt.Sprintf("%s=%s", k, t[k]))
	}
	return result
}

// Clone returns a copy of the record. A nil record clones to nil.
func (t TXTRecord) Clone() TXTRecord {
	if t == nil {
		return nil
	}
	c := make(TXTRecord, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// StringsToTXTRecord parses a slice of "key=value" strings into a TXTRecord.
// A string without "=" is a boolean attribute and maps to "".
func StringsToTXTRecord(strs []string) TXTRecord {
	txt := make(TXTRecord)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// Encode returns the RFC 6763 wire form: a sequence of length-prefixed
// "key=value" strings. An empty record encodes as a single empty string.
func (t TXTRecord) Encode() ([]byte, error) {
	if len(t) == 0 {
		return []byte{0}, nil
	}

	var out []byte
	for _, s := range t.Strings() {
		key, _, _ := strings.Cut(s, "=")
		if key == "" {
			return nil, fmt.Errorf("%w: empty TXT key", ErrBadParam)
		}
		if len(s) > MaxTXTStringLen {
			return nil, fmt.Errorf("%w: TXT entry %q exceeds %d bytes", ErrBadParam, key, MaxTXTStringLen)
		}
		out = append(out, byte(len(s)))
		out = append(out, s...)
	}
	return out, nil
}

// DecodeTXTRecord parses the RFC 6763 wire form. When a key appears more
// than once the first occurrence wins.
func DecodeTXTRecord(data []byte) (TXTRecord, error) {
	txt := make(TXTRecord)
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		if i+n > len(data) {
			return nil, fmt.Errorf("%w: truncated TXT string", ErrInvalid)
		}
		s := string(data[i : i+n])
		i += n
		if s == "" {
			continue
		}
		key, value, _ := strings.Cut(s, "=")
		if key == "" {
			continue
		}
		if _, seen := txt[key]; !seen {
			txt[key] = value
		}
	}
	return txt, nil
}
