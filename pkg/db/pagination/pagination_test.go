package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "1998885394804412416", CreatedAt: "2026-03-10 12:00:00"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "1998885394804412416", cursor.ID)
	assert.Equal(t, "2026-03-10 12:00:00", cursor.CreatedAt)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("%%%not-base64%%%")
	assert.Error(t, err)

	_, err = DecodeCursor("bm90LWpzb24=")
	assert.Error(t, err)
}
