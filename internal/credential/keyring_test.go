package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewWithKeyring(keyring.NewArrayKeyring(nil))

	_, err := s.Get("mailbox")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("mailbox", "hunter2"))
	got, err := s.Get("mailbox")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	require.NoError(t, s.Delete("mailbox"))
	require.NoError(t, s.Delete("mailbox"))
	_, err = s.Get("mailbox")
	assert.ErrorIs(t, err, ErrNotFound)
}
