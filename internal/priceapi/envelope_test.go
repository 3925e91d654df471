package priceapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestDecodeEnvelopeWindows1251(t *testing.T) {
	payload := `{"table":[{"class_user":"Магазин","priceV2":10}]}`
	xmlDoc := `<?xml version="1.0" encoding="windows-1251"?><string>` + payload + `</string>`
	encoded, err := charmap.Windows1251.NewEncoder().String(xmlDoc)
	require.NoError(t, err)

	resp, err := decodeEnvelope([]byte(encoded), "text/xml")
	require.NoError(t, err)
	require.Len(t, resp.Offers, 1)
	assert.Equal(t, "Магазин", resp.Offers[0].Store)
}

func TestDecodeEnvelopeCharsetFromHeader(t *testing.T) {
	xmlDoc := `<string>{"price_min_instock":"Нет","table":[]}</string>`
	encoded, err := charmap.Windows1251.NewEncoder().String(xmlDoc)
	require.NoError(t, err)

	resp, err := decodeEnvelope([]byte(encoded), "text/xml; charset=windows-1251")
	require.NoError(t, err)
	assert.Equal(t, "Нет", string(resp.MinInStock))
}

func TestDecodeEnvelopeIgnoresNestedText(t *testing.T) {
	resp, err := decodeEnvelope([]byte(`<string><meta>x</meta>{"table":[]}</string>`), "")
	require.NoError(t, err)
	assert.Empty(t, resp.Offers)
}

func TestSummarizeBody(t *testing.T) {
	html := []byte(`<html><head><title>502 Bad Gateway</title></head><body><h1>Bad Gateway</h1></body></html>`)
	assert.Equal(t, "502 Bad Gateway: Bad Gateway", summarizeBody(html, "text/html"))
	assert.Equal(t, "plain text error", summarizeBody([]byte("  plain \n text error "), "text/plain"))
	assert.Equal(t, "", summarizeBody(nil, ""))
}

func TestKeyPoolEmpty(t *testing.T) {
	pool := NewKeyPool(nil)
	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, "", pool.Next())
}
