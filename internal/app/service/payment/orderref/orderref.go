package orderref

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedReference indicates an order reference that cannot be decoded.
var ErrMalformedReference = errors.New("malformed order reference")

// Ref bundles the domain identifiers round-tripped opaquely through a payment
// gateway. It is generated per payment attempt and consumed exactly once at
// confirmation time; the gateway's order metadata is its only store.
type Ref struct {
	TourID    uint
	PayerID   uint
	InvoiceID uint
	IssuedAt  int64
}

const (
	versionTag = "v1"

	legacyTourMarker    = "TourID:"
	legacyPayerMarker   = "PayerID:"
	legacyInvoiceMarker = "InvID:"
)

// Encode serializes ref in the tagged v1 format, e.g.
// "v1;tour=3;payer=7;inv=12;ts=1693372800".
func Encode(ref Ref) string {
	return fmt.Sprintf("%s;tour=%d;payer=%d;inv=%d;ts=%d",
		versionTag, ref.TourID, ref.PayerID, ref.InvoiceID, ref.IssuedAt)
}

// Decode recovers a Ref from its string form. Both the tagged v1 format and
// the legacy marker format ("TourID:3PayerID:7InvID:12") are accepted; legacy
// references from older in-flight transactions may lack trailing markers, in
// which case the identifiers actually present are returned and the rest stay
// zero. A missing required identifier or a non-numeric value fails with
// ErrMalformedReference.
func Decode(s string) (Ref, error) {
	if strings.HasPrefix(s, versionTag+";") {
		return decodeV1(s)
	}
	if strings.HasPrefix(s, legacyTourMarker) {
		return decodeLegacy(s)
	}
	return Ref{}, fmt.Errorf("%w: unrecognized format %q", ErrMalformedReference, s)
}

func decodeV1(s string) (Ref, error) {
	var ref Ref
	seen := map[string]bool{}
	for _, field := range strings.Split(s, ";")[1:] {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			return Ref{}, fmt.Errorf("%w: field %q", ErrMalformedReference, field)
		}
		switch k {
		case "ts":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return Ref{}, fmt.Errorf("%w: ts %q", ErrMalformedReference, v)
			}
			ref.IssuedAt = n
			continue
		case "tour", "payer", "inv":
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return Ref{}, fmt.Errorf("%w: %s %q", ErrMalformedReference, k, v)
			}
			switch k {
			case "tour":
				ref.TourID = uint(n)
			case "payer":
				ref.PayerID = uint(n)
			case "inv":
				ref.InvoiceID = uint(n)
			}
			seen[k] = true
		}
	}
	if !seen["tour"] || !seen["payer"] {
		return Ref{}, fmt.Errorf("%w: missing tour or payer field in %q", ErrMalformedReference, s)
	}
	return ref, nil
}

// decodeLegacy parses the marker-spliced label used before references were
// versioned. Markers are located by substring search and each value runs up
// to the next marker or end of string, so identifiers of any digit length
// decode correctly.
func decodeLegacy(s string) (Ref, error) {
	var ref Ref

	tour, rest, err := cutLegacy(s, legacyTourMarker, legacyPayerMarker)
	if err != nil {
		return Ref{}, err
	}
	ref.TourID = tour

	payer, rest, err := cutLegacy(rest, legacyPayerMarker, legacyInvoiceMarker)
	if err != nil {
		return Ref{}, err
	}
	ref.PayerID = payer

	// One gateway revision emitted references without an invoice marker;
	// tolerate its absence instead of hard-failing the confirmation.
	if strings.Contains(rest, legacyInvoiceMarker) {
		inv, _, err := cutLegacy(rest, legacyInvoiceMarker, "")
		if err != nil {
			return Ref{}, err
		}
		ref.InvoiceID = inv
	}
	return ref, nil
}

func cutLegacy(s, marker, next string) (uint, string, error) {
	i := strings.Index(s, marker)
	if i < 0 {
		return 0, "", fmt.Errorf("%w: missing marker %q", ErrMalformedReference, marker)
	}
	val := s[i+len(marker):]
	rest := ""
	if next != "" {
		if j := strings.Index(val, next); j >= 0 {
			rest = val[j:]
			val = val[:j]
		}
	}
	n, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, "", fmt.Errorf("%w: value %q after %q", ErrMalformedReference, val, marker)
	}
	return uint(n), rest, nil
}
