package poker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardString(t *testing.T) {
	t.Parallel()

	aceSpades := NewCard(Ace, Spades)
	if aceSpades.String() != "A♠" {
		t.Errorf("Expected 'A♠', got %s", aceSpades.String())
	}
	if aceSpades.Notation() != "As" {
		t.Errorf("Expected 'As', got %s", aceSpades.Notation())
	}
	if aceSpades.Value() != 14 {
		t.Errorf("Expected value 14, got %d", aceSpades.Value())
	}

	twoHearts := NewCard(Two, Hearts)
	if twoHearts.String() != "2♥" {
		t.Errorf("Expected '2♥', got %s", twoHearts.String())
	}
	if twoHearts.Value() != 2 {
		t.Errorf("Expected value 2, got %d", twoHearts.Value())
	}
}

func TestParseCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		want    Card
		wantErr bool
	}{
		{name: "ace of spades", input: "As", want: NewCard(Ace, Spades)},
		{name: "two of hearts", input: "2h", want: NewCard(Two, Hearts)},
		{name: "ten of diamonds", input: "Td", want: NewCard(Ten, Diamonds)},
		{name: "lowercase rank", input: "kc", want: NewCard(King, Clubs)},
		{name: "suit symbol", input: "Q♥", want: NewCard(Queen, Hearts)},
		{name: "bad rank", input: "1s", wantErr: true},
		{name: "bad suit", input: "Ax", wantErr: true},
		{name: "too long", input: "10h", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCard(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCards(t *testing.T) {
	t.Parallel()

	cards, err := ParseCards("As Kd  2c")
	require.NoError(t, err)
	assert.Equal(t, []Card{NewCard(Ace, Spades), NewCard(King, Diamonds), NewCard(Two, Clubs)}, cards)
	assert.Equal(t, "A♠ K♦ 2♣", FormatCards(cards))

	_, err = ParseCards("As Zz")
	assert.Error(t, err)
}

func TestCardJSON(t *testing.T) {
	t.Parallel()

	hand := []Card{NewCard(Ace, Spades), NewCard(Ten, Hearts)}
	data, err := json.Marshal(hand)
	require.NoError(t, err)
	assert.JSONEq(t, `["As","Th"]`, string(data))

	var decoded []Card
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, hand, decoded)

	var bad Card
	assert.Error(t, json.Unmarshal([]byte(`"Xx"`), &bad))
}

func TestSuitColor(t *testing.T) {
	t.Parallel()
	assert.True(t, Hearts.IsRed())
	assert.True(t, Diamonds.IsRed())
	assert.False(t, Clubs.IsRed())
	assert.False(t, Spades.IsRed())
}
