package payment

import (
	"crypto/sha1"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	sum := sha1.Sum([]byte("priv" + "payload" + "priv"))
	assert.Equal(t, base64.StdEncoding.EncodeToString(sum[:]), Sign("priv", "payload"))

	assert.True(t, Verify("priv", "payload", Sign("priv", "payload")))
	assert.False(t, Verify("other", "payload", Sign("priv", "payload")))
	assert.False(t, Verify("priv", "payload2", Sign("priv", "payload")))
}

func TestNewCheckout(t *testing.T) {
	params := Params{
		Version:     3,
		PublicKey:   "sandbox_pub",
		Action:      "pay",
		Amount:      450,
		Currency:    "UAH",
		Description: "Full wash at Shine",
		OrderID:     "b-1",
		Sandbox:     1,
	}

	checkout, err := NewCheckout("priv", params)
	require.NoError(t, err)
	assert.True(t, Verify("priv", checkout.Data, checkout.Signature))

	decoded, err := DecodeData(checkout.Data)
	require.NoError(t, err)
	assert.Equal(t, params, *decoded)

	_, err = DecodeData("%%%")
	assert.Error(t, err)
}

func TestCheckoutForm(t *testing.T) {
	html, err := CheckoutForm(Checkout{Data: "ZGF0YQ==", Signature: `a"b<c>`})
	require.NoError(t, err)

	assert.Contains(t, html, `action="https://www.liqpay.ua/api/3/checkout"`)
	assert.Contains(t, html, `name="data" value="ZGF0YQ=="`)
	assert.NotContains(t, html, `a"b<c>`, "attribute values must be escaped")
	assert.Contains(t, html, `.submit()`)

	custom, err := CheckoutForm(Checkout{Data: "d", Signature: "s", Action: "http://localhost:8080/checkout"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(custom, `action="http://localhost:8080/checkout"`))
}
