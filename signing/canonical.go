package signing

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// Canonicalize renders a JSON value as a compact string with object keys
// sorted lexicographically at every nesting level. The exchange verifies
// signatures against exactly this rendering, so any deviation in key order
// or whitespace invalidates the signature.
func Canonicalize(value any) (string, error) {
	var b strings.Builder
	if err := writeCanonical(&b, value); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeCanonical(b *strings.Builder, value any) error {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, err := marshalScalar(k)
			if err != nil {
				return fmt.Errorf("marshal key %q: %w", k, err)
			}
			b.Write(kb)
			b.WriteByte(':')
			if err := writeCanonical(b, v[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil
	case []any:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonical(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	default:
		vb, err := marshalScalar(v)
		if err != nil {
			return fmt.Errorf("marshal value: %w", err)
		}
		b.Write(vb)
		return nil
	}
}

// marshalScalar encodes a leaf value without HTML escaping. The default
// encoder rewrites &, < and > as \u escapes, which would change the
// signed bytes for strings the exchange stores literally.
func marshalScalar(v any) ([]byte, error) {
	return json.MarshalWithOption(v, json.DisableHTMLEscape())
}
