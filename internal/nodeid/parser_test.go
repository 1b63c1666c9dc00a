// internal/nodeid/parser_test.go
package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		rawID        string
		expectErr    bool
		expectedAddr Address
	}{
		{
			name:         "bare name",
			rawID:        "makeSkyMap",
			expectedAddr: NewAddress("makeSkyMap", nil),
		},
		{
			name:         "single dimension",
			rawID:        "calexp[visit=903334]",
			expectedAddr: NewAddress("calexp", KeyOf("visit", "903334")),
		},
		{
			name:         "multiple dimensions",
			rawID:        "processCcd[ccd=0,visit=903334]",
			expectedAddr: NewAddress("processCcd", KeyOf("visit", "903334", "ccd", "0")),
		},
		{
			name:         "value containing a comma",
			rawID:        "coaddTempExp[patch=1,1,tract=0]",
			expectedAddr: NewAddress("coaddTempExp", KeyOf("tract", "0", "patch", "1,1")),
		},
		{
			name:      "error - empty string",
			rawID:     "",
			expectErr: true,
		},
		{
			name:      "error - empty brackets",
			rawID:     "calexp[]",
			expectErr: true,
		},
		{
			name:      "error - unsorted axes",
			rawID:     "calexp[visit=1,ccd=0]",
			expectErr: true,
		},
		{
			name:      "error - duplicate axis",
			rawID:     "calexp[ccd=1,ccd=0]",
			expectErr: true,
		},
		{
			name:      "error - path separator in value",
			rawID:     "calexp[ccd=a/b]",
			expectErr: true,
		},
		{
			name:      "error - name starts with digit",
			rawID:     "0calexp",
			expectErr: true,
		},
		{
			name:      "error - leading fragment without axis",
			rawID:     "calexp[1,ccd=0]",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := Parse(tc.rawID)

			if tc.expectErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, tc.expectedAddr.Equal(addr), "parsed %v, expected %v", addr, tc.expectedAddr)
		})
	}
}

func TestValidValue(t *testing.T) {
	valid := []string{"0", "903334", "HSC-I", "1,1", "a_b", "r:1", "+5"}
	invalid := []string{"", "a/b", `a\b`, "a b", "x=1", "0.5", "[0]"}

	for _, v := range valid {
		assert.True(t, ValidValue(v), "expected %q to be valid", v)
	}
	for _, v := range invalid {
		assert.False(t, ValidValue(v), "expected %q to be invalid", v)
	}
}
