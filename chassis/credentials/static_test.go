package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveReturnsPinnedKeyPair(t *testing.T) {
	creds := New("AKIAEXAMPLE", "secret")

	value, err := creds.Get()
	require.NoError(t, err)
	assert.Equal(t, "AKIAEXAMPLE", value.AccessKeyID)
	assert.Equal(t, "secret", value.SecretAccessKey)
	assert.Equal(t, ProviderName, value.ProviderName)
}

func TestRetrieveRejectsEmptyKeyPair(t *testing.T) {
	provider := &StaticKeyPairProvider{}

	_, err := provider.Retrieve()
	assert.ErrorIs(t, err, ErrEmptyKeyPair)
}

func TestStaticCredentialsNeverExpire(t *testing.T) {
	provider := &StaticKeyPairProvider{AccessKeyID: "k", SecretAccessKey: "s"}
	assert.False(t, provider.IsExpired())
}
