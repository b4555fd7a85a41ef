package credentials

import (
	"errors"

	"github.com/aws/aws-sdk-go/aws/credentials"
)

// ProviderName identifies this provider in credentials.Value.
const ProviderName = "StaticKeyPairProvider"

// ErrEmptyKeyPair ...
var ErrEmptyKeyPair = errors.New("credentials: access key and secret key must not be empty")

// StaticKeyPairProvider pins one access-key pair for the lifetime of the
// process. There is no refresh: the credentials never expire.
type StaticKeyPairProvider struct {
	AccessKeyID     string
	SecretAccessKey string
}

// Retrieve implements credentials.Provider.
func (p *StaticKeyPairProvider) Retrieve() (credentials.Value, error) {
	if p.AccessKeyID == "" || p.SecretAccessKey == "" {
		return credentials.Value{ProviderName: ProviderName}, ErrEmptyKeyPair
	}
	return credentials.Value{
		AccessKeyID:     p.AccessKeyID,
		SecretAccessKey: p.SecretAccessKey,
		ProviderName:    ProviderName,
	}, nil
}

// IsExpired implements credentials.Provider.
func (p *StaticKeyPairProvider) IsExpired() bool {
	return false
}

// New wraps a fixed key pair in SDK credentials.
func New(accessKey, secretKey string) *credentials.Credentials {
	return credentials.NewCredentials(&StaticKeyPairProvider{
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
	})
}
