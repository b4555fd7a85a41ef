package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStampsVersion(t *testing.T) {
	event := &Event{Source: "sendreceive", Text: "hello"}

	raw, err := event.JSON()
	require.NoError(t, err)

	parsed := &Event{}
	require.NoError(t, parsed.FromJSON(raw))
	assert.Equal(t, Version, parsed.Version)
	assert.Equal(t, "sendreceive", parsed.Source)
	assert.Equal(t, "hello", parsed.Text)
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	event := &Event{}
	assert.Error(t, event.FromJSON("not json"))
}
