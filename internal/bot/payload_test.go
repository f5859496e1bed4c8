package bot

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJoinPayload(t *testing.T) {
	id := uuid.New()

	ref, err := ParseJoinPayload("100:" + id.String())
	require.NoError(t, err)
	assert.Equal(t, int64(100), ref.OwnerID)
	assert.Equal(t, id, ref.GiveawayID)
}

func TestParseJoinPayloadIgnoresTrailingNonce(t *testing.T) {
	id := uuid.New()

	ref, err := ParseJoinPayload("100:" + id.String() + ":917")
	require.NoError(t, err)
	assert.Equal(t, int64(100), ref.OwnerID)
	assert.Equal(t, id, ref.GiveawayID)
}

func TestParseJoinPayloadRejectsGarbage(t *testing.T) {
	for _, payload := range []string{"", "100", "abc:def", "100:not-a-uuid"} {
		_, err := ParseJoinPayload(payload)
		assert.Error(t, err, "payload %q", payload)
	}
}

func TestParseStartPayload(t *testing.T) {
	id := uuid.New()

	ref, ok, err := ParseStartPayload("100_" + id.String())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(100), ref.OwnerID)
	assert.Equal(t, id, ref.GiveawayID)
}

func TestParseStartPayloadEmptyMeansBareStart(t *testing.T) {
	_, ok, err := ParseStartPayload("  ")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseStartPayloadMalformed(t *testing.T) {
	for _, payload := range []string{"100", "abc_def", "100_nope"} {
		_, ok, err := ParseStartPayload(payload)
		assert.True(t, ok, "payload %q", payload)
		assert.Error(t, err, "payload %q", payload)
	}
}

func TestParsePublishArgs(t *testing.T) {
	id := uuid.New()

	channel, parsed, err := ParsePublishArgs("@promo " + id.String())
	require.NoError(t, err)
	assert.Equal(t, "@promo", channel)
	assert.Equal(t, id, parsed)
}

func TestParsePublishArgsRejectsGarbage(t *testing.T) {
	for _, text := range []string{"", "@promo", "@promo not-a-uuid"} {
		_, _, err := ParsePublishArgs(text)
		assert.Error(t, err, "text %q", text)
	}
}

func TestParseDrawArgs(t *testing.T) {
	id := uuid.New()

	parsed, count, err := ParseDrawArgs(id.String() + " 3")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.Equal(t, 3, count)
}

func TestParseDrawArgsDistinguishesIDAndCountFailures(t *testing.T) {
	id := uuid.New()

	_, _, err := ParseDrawArgs("not-a-uuid 3")
	assert.ErrorIs(t, err, errDrawID)

	_, _, err = ParseDrawArgs(id.String() + " zero")
	assert.ErrorIs(t, err, errDrawCount)

	_, _, err = ParseDrawArgs(id.String() + " 0")
	assert.ErrorIs(t, err, errDrawCount)

	_, _, err = ParseDrawArgs(id.String())
	assert.ErrorIs(t, err, errDrawCount)
}
