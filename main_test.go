package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOffsets(t *testing.T) {
	got, err := parseOffsets("0, 300,2500,,5000")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{0, 300 * time.Millisecond, 2500 * time.Millisecond, 5 * time.Second}, got)

	for _, bad := range []string{"", " , ", "-1", "1s", "abc"} {
		_, err := parseOffsets(bad)
		assert.Error(t, err, bad)
	}
}
