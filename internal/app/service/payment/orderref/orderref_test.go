package orderref

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	cases := []Ref{
		{TourID: 3, PayerID: 7, InvoiceID: 12, IssuedAt: 1693372800},
		{TourID: 1, PayerID: 1, InvoiceID: 1},
		{TourID: 4294967295, PayerID: 999999, InvoiceID: 100000, IssuedAt: 1},
	}
	for _, want := range cases {
		got, err := Decode(Encode(want))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestDecodeLegacyFullReference(t *testing.T) {
	ref, err := Decode("TourID:3PayerID:7InvID:12")
	require.NoError(t, err)
	require.Equal(t, Ref{TourID: 3, PayerID: 7, InvoiceID: 12}, ref)
}

func TestDecodeLegacyLongIdentifiers(t *testing.T) {
	ref, err := Decode("TourID:12345PayerID:678901InvID:23456789")
	require.NoError(t, err)
	require.Equal(t, Ref{TourID: 12345, PayerID: 678901, InvoiceID: 23456789}, ref)
}

func TestDecodeLegacyWithoutInvoiceMarker(t *testing.T) {
	// Old in-flight transactions carried no invoice id.
	ref, err := Decode("TourID:3PayerID:7")
	require.NoError(t, err)
	require.Equal(t, Ref{TourID: 3, PayerID: 7, InvoiceID: 0}, ref)
}

func TestDecodeV1WithoutInvoiceField(t *testing.T) {
	ref, err := Decode("v1;tour=3;payer=7;ts=99")
	require.NoError(t, err)
	require.Equal(t, Ref{TourID: 3, PayerID: 7, IssuedAt: 99}, ref)
}

func TestDecodeMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"some random string",
		"v2;tour=3;payer=7",
		"v1;payer=7",
		"v1;tour=abc;payer=7",
		"TourID:xPayerID:7",
		"PayerID:7InvID:12",
	} {
		_, err := Decode(s)
		require.ErrorIs(t, err, ErrMalformedReference, "input %q", s)
	}
}
