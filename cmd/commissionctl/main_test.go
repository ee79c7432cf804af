package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"commissionctl"}, args...))
	return out.String(), err
}

func TestAllocatePrintsBreakdown(t *testing.T) {
	out, err := run(t, "allocate", "--rest", "10", "-p", "Asuransi:400:5", "-p", "Garansi:100:20", "1000")
	require.NoError(t, err)
	require.Contains(t, out, "Asuransi")
	require.Contains(t, out, "20.00")
	require.Contains(t, out, "50.00")
	// 20 + 20 + 50
	require.Contains(t, out, "90.00")
	require.NotContains(t, out, "warning")
}

func TestAllocateWarnsOnOverAllocation(t *testing.T) {
	out, err := run(t, "allocate", "-p", "A:150:10", "100")
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "warning"))
}

func TestParseProductRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"A:1", ":1:2", "A:x:2", "A:1:101", "A:-1:5"} {
		_, err := parseProduct(raw)
		require.Error(t, err, raw)
	}
	p, err := parseProduct(" Paket : 1500 : 7.5 ")
	require.NoError(t, err)
	require.Equal(t, "Paket", p.Name)
	require.Equal(t, 7.5, p.Percentage)
}

func TestHashPassphrase(t *testing.T) {
	out, err := run(t, "hash-passphrase", "correct horse")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "$argon2id$"))

	_, err = run(t, "hash-passphrase", "short")
	require.Error(t, err)

	// seven two-byte runes: long enough in bytes, too short in characters
	_, err = run(t, "hash-passphrase", "ñññññññ")
	require.Error(t, err)
}
