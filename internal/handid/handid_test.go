package handid

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	id := New()
	assert.Len(t, id, Length)
	assert.NoError(t, Validate(id))

	u, err := Decode(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), u.Version())
}

func TestNewUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for range 100 {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestNewFromReaderDeterministic(t *testing.T) {
	t.Parallel()

	a, err := NewFromReader(bytes.NewReader(bytes.Repeat([]byte{0xab}, 64)))
	require.NoError(t, err)
	b, err := NewFromReader(bytes.NewReader(bytes.Repeat([]byte{0xab}, 64)))
	require.NoError(t, err)
	// same random bits, timestamps may differ by a millisecond
	assert.Equal(t, a[len(a)-10:], b[len(b)-10:])
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, u := range []uuid.UUID{
		{},
		uuid.Must(uuid.Parse("ffffffff-ffff-ffff-ffff-ffffffffffff")),
		uuid.Must(uuid.Parse("01890a5d-ac96-774b-bcce-b302099a8057")),
	} {
		id := Encode(u)
		require.Len(t, id, Length)
		got, err := Decode(id)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	}

	assert.Equal(t, strings.Repeat("0", Length), Encode(uuid.UUID{}))
	assert.Equal(t, "7"+strings.Repeat("z", Length-1), Encode(uuid.Must(uuid.Parse("ffffffff-ffff-ffff-ffff-ffffffffffff"))))
}

func TestEncodeSortsByTime(t *testing.T) {
	t.Parallel()

	earlier := uuid.Must(uuid.Parse("01890a5d-ac96-774b-bcce-b302099a8057"))
	later := earlier
	later[5]++
	assert.Less(t, Encode(earlier), Encode(later))
}

func TestTime(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-time.Second)
	ts, err := Time(New())
	require.NoError(t, err)
	assert.True(t, ts.After(before))
	assert.True(t, ts.Before(time.Now().Add(time.Second)))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "01h2xcejqtf2nbrexx3vqjhp41", false},
		{"too short", "01h2xcejqtf2nbrexx3vqjhp4", true},
		{"too long", "01h2xcejqtf2nbrexx3vqjhp411", true},
		{"first character too large", "81h2xcejqtf2nbrexx3vqjhp41", true},
		{"excluded letter", "01h2xcejqtf2nbrexx3vqjhp4i", true},
		{"uppercase", "01H2XCEJQTF2NBREXX3VQJHP41", true},
	}
	for _, tt := range tests {
		err := Validate(tt.id)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
		} else {
			assert.NoError(t, err, tt.name)
		}
	}
}
