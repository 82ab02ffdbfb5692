package payment

import (
	"bytes"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
)

// DefaultCheckoutURL is the LiqPay checkout endpoint the form posts to
const DefaultCheckoutURL = "https://www.liqpay.ua/api/3/checkout"

// Params is the LiqPay checkout request, encoded into the data blob
type Params struct {
	Version     int     `json:"version"`
	PublicKey   string  `json:"public_key"`
	Action      string  `json:"action"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	ResultURL   string  `json:"result_url,omitempty"`
	ServerURL   string  `json:"server_url,omitempty"`
	Sandbox     int     `json:"sandbox,omitempty"`
}

// Checkout is the opaque payload handed to the payment surface
type Checkout struct {
	Data      string
	Signature string
	Action    string // Form action; DefaultCheckoutURL when empty
}

// EncodeData serialises params into the base64 data blob
func EncodeData(params Params) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode liqpay params: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeData parses a data blob back into params
func DecodeData(data string) (*Params, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("invalid liqpay data encoding: %w", err)
	}
	var params Params
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("invalid liqpay data payload: %w", err)
	}
	return &params, nil
}

// Sign computes base64(sha1(privateKey + data + privateKey))
func Sign(privateKey, data string) string {
	sum := sha1.Sum([]byte(privateKey + data + privateKey))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Verify checks a signature in constant time
func Verify(privateKey, data, signature string) bool {
	expected := Sign(privateKey, data)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// NewCheckout encodes and signs params
func NewCheckout(privateKey string, params Params) (*Checkout, error) {
	data, err := EncodeData(params)
	if err != nil {
		return nil, err
	}
	return &Checkout{Data: data, Signature: Sign(privateKey, data)}, nil
}

var checkoutTemplate = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>LiqPay</title></head>
<body>
<form id="liqpay" method="POST" action="{{.Action}}" accept-charset="utf-8">
<input type="hidden" name="data" value="{{.Data}}" />
<input type="hidden" name="signature" value="{{.Signature}}" />
</form>
<script type="text/javascript">document.getElementById("liqpay").submit();</script>
</body>
</html>
`))

// CheckoutForm renders the auto-submitting checkout form
func CheckoutForm(c Checkout) (string, error) {
	if c.Action == "" {
		c.Action = DefaultCheckoutURL
	}
	var buf bytes.Buffer
	if err := checkoutTemplate.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("failed to render checkout form: %w", err)
	}
	return buf.String(), nil
}
