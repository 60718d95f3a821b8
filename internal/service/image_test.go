package service

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURI(t *testing.T) {
	payload := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 8)...)
	img, err := DecodeDataURI("data:image/png;base64," + base64.StdEncoding.EncodeToString(payload))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, payload, img.Data)

	key := img.ObjectKey()
	assert.True(t, strings.HasPrefix(key, "recipes/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, img.ObjectKey())
}

func TestDecodeDataURIRejects(t *testing.T) {
	png := base64.StdEncoding.EncodeToString(append([]byte("\x89PNG\r\n\x1a\n"), 0))
	cases := map[string]string{
		"not a data uri":   "https://example.com/a.png",
		"unsupported type": "data:text/plain;base64,aGVsbG8=",
		"bad base64":       "data:image/png;base64,!!!",
		"type mismatch":    "data:image/jpeg;base64," + png,
		"empty payload":    "data:image/png;base64,",
	}
	for name, uri := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDataURI(uri)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, "image")
		})
	}
}
