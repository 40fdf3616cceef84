package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescription(t *testing.T) {
	tests := []struct {
		name  string
		cover string
		want  string
		ok    bool
	}{
		{
			name:  "plain sentence",
			cover: "Bæredygtigheds Manual NYBYG\nBO-VEST bæredygtighedsmanual for nybyggeri\nsætter rammen.\nTegnestuen Vandkunsten Oktober 2023",
			want:  "BO-VEST bæredygtighedsmanual for nybyggeri sætter rammen.",
			ok:    true,
		},
		{
			name:  "doubled glyphs and noise",
			cover: "TTeeggnneessttuueenn >> BO-VEST  bæredygtighedsmanual // beskriver kravene.",
			want:  "BO-VEST bæredygtighedsmanual beskriver kravene.",
			ok:    true,
		},
		{
			name:  "no sentence",
			cover: "Forside\nIndhold",
			ok:    false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Description(tc.cover)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUndouble(t *testing.T) {
	assert.Equal(t, "Tegnestuen", undouble("TTeeggnneessttuueenn"))
	assert.Equal(t, "Ottetallet", undouble("Ottetallet"))
	assert.Equal(t, "aa bb", undouble("aa bb"))
}
