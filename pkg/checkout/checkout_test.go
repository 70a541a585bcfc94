package checkout

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider(t *testing.T) {
	p := NewLocalProvider()
	ctx := context.Background()

	s, err := p.CreateSession(ctx, SessionRequest{
		PendingID:  "pending-1",
		Title:      "Haircut",
		Price:      20,
		Currency:   "usd",
		SuccessURL: "http://localhost:5173/success",
	})
	require.NoError(t, err)
	assert.True(t, s.Paid)
	assert.True(t, strings.HasPrefix(s.ID, "local_"))
	assert.Equal(t, "http://localhost:5173/success?session_id="+s.ID, s.URL)

	got, err := p.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending-1", got.PendingID)

	_, err = p.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLocalProvider_SessionPlaceholder(t *testing.T) {
	s, err := NewLocalProvider().CreateSession(context.Background(), SessionRequest{
		SuccessURL: "http://app/success?ref=1&session_id={CHECKOUT_SESSION_ID}",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://app/success?ref=1&session_id="+s.ID, s.URL)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2000), MinorUnits(20))
	assert.Equal(t, int64(1999), MinorUnits(19.99))
	assert.Equal(t, int64(5), MinorUnits(0.049))
}
