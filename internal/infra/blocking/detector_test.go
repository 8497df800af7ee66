package blocking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect_CleanResponse(t *testing.T) {
	res := Detect([]byte("<html><body>Welcome to the site</body></html>"), 200, "https://example.com")

	assert.False(t, res.Blocked)
	assert.Empty(t, res.BlockType)
}

func TestDetect_HTTP403(t *testing.T) {
	res := Detect([]byte("forbidden"), 403, "https://example.com")

	assert.True(t, res.Blocked)
	assert.Equal(t, "HTTP_403_FORBIDDEN", res.BlockType)
	assert.Equal(t, "HTTP_403_FORBIDDEN", res.HTTPBlock)
}

func TestDetect_HTTP429SetsBothHTTPBlockAndIPBan(t *testing.T) {
	res := Detect([]byte("slow down"), 429, "https://example.com")

	assert.True(t, res.Blocked)
	assert.Equal(t, "HTTP_429_RATE_LIMIT", res.BlockType)
	assert.True(t, res.IPBanDetected)
}

func TestDetect_HTTP503(t *testing.T) {
	res := Detect([]byte("maintenance"), 503, "https://example.com")

	assert.True(t, res.Blocked)
	assert.Equal(t, "HTTP_503_SERVICE_UNAVAILABLE", res.BlockType)
}

func TestDetect_CaptchaPhraseInBody(t *testing.T) {
	res := Detect([]byte("Please complete the reCAPTCHA to continue"), 200, "https://example.com")

	assert.True(t, res.Blocked)
	assert.True(t, res.CaptchaDetected)
	assert.Equal(t, "CAPTCHA", res.BlockType)
}

func TestDetect_CaptchaDOMMarker(t *testing.T) {
	body := `<html><body><div id="cf-wrapper">checking your browser</div></body></html>`
	res := Detect([]byte(body), 200, "https://example.com")

	assert.True(t, res.Blocked)
	assert.True(t, res.CaptchaDetected)
}

func TestDetect_IPBanPhraseInBody(t *testing.T) {
	res := Detect([]byte("Your IP has been temporarily blocked"), 200, "https://example.com")

	assert.True(t, res.Blocked)
	assert.True(t, res.IPBanDetected)
	assert.Equal(t, "IP_BAN", res.BlockType)
}

func TestDetect_PrecedenceHTTPBeatsCaptcha(t *testing.T) {
	res := Detect([]byte("please solve the captcha"), 403, "https://example.com")

	assert.Equal(t, "HTTP_403_FORBIDDEN", res.BlockType)
	assert.True(t, res.CaptchaDetected)
}

func TestDetect_OtherStatusNotItselfABlock(t *testing.T) {
	res := Detect([]byte("not found"), 404, "https://example.com")

	assert.False(t, res.Blocked)
}
