package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/harvest/internal/encoding"
)

func readAll(t *testing.T, in []byte) (string, encoding.Charset) {
	t.Helper()

	r, cs, err := encoding.NewUTF8Reader(bytes.NewReader(in))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), cs
}

func TestNewUTF8Reader(t *testing.T) {
	type testCase struct {
		name        string
		input       func(t *testing.T) []byte
		want        string
		wantCharset encoding.Charset
	}

	tests := []testCase{
		{
			name:        "UTF8Passthrough",
			input:       func(*testing.T) []byte { return []byte("Date,Details,Paid In\nMuranga Coöp,ADV-1001,1 250.00\n") },
			want:        "Date,Details,Paid In\nMuranga Coöp,ADV-1001,1 250.00\n",
			wantCharset: encoding.UTF8,
		},
		{
			name: "Windows1252",
			input: func(*testing.T) []byte {
				// "Coopérative;Montant\n" with é = 0xE9.
				return []byte{'C', 'o', 'o', 'p', 0xE9, 'r', 'a', 't', 'i', 'v', 'e', ';', 'M', 'o', 'n', 't', 'a', 'n', 't', '\n'}
			},
			want: "Coopérative;Montant\n",
		},
		{
			name: "UTF8BOMStripped",
			input: func(*testing.T) []byte {
				return append([]byte{0xEF, 0xBB, 0xBF}, []byte("Details;Amount\n")...)
			},
			want:        "Details;Amount\n",
			wantCharset: encoding.UTF8,
		},
		{
			name: "UTF16LE",
			input: func(t *testing.T) []byte {
				b, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("Date;Amount\n"))
				require.NoError(t, err)
				return b
			},
			want:        "Date;Amount\n",
			wantCharset: encoding.UTF16LE,
		},
		{
			name: "UTF8RuneAcrossPeekBoundary",
			input: func(*testing.T) []byte {
				return []byte(strings.Repeat("a", 4095) + "é\n")
			},
			want:        strings.Repeat("a", 4095) + "é\n",
			wantCharset: encoding.UTF8,
		},
		{
			name:        "Empty",
			input:       func(*testing.T) []byte { return nil },
			want:        "",
			wantCharset: encoding.UTF8,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, cs := readAll(t, tc.input(t))
			assert.Equal(t, tc.want, got)
			if tc.wantCharset != "" {
				assert.Equal(t, tc.wantCharset, cs)
			}
		})
	}
}
