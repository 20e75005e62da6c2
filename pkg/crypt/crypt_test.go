package crypt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenJSON(t *testing.T) {
	type stored struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	box := New("k1")
	in := stored{Token: "abc.def.ghi", ExpiresAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}

	enc, err := box.SealJSON(in)
	require.NoError(t, err)
	assert.NotContains(t, enc, "abc.def.ghi")

	var out stored
	require.NoError(t, box.OpenJSON(enc, &out))
	assert.Equal(t, in, out)
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	enc, err := New("k1").Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = New("k2").Open(enc)
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = New("k1").Open("%%%")
	assert.ErrorIs(t, err, ErrDecrypt)
}
