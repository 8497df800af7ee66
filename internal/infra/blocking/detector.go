// Package blocking classifies HTTP responses as adversarial (rate limiting,
// CAPTCHA challenges, IP bans) so the crawl manager knows when to abort a run
// rather than keep fetching.
package blocking

import (
	"bytes"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// blockStatusCodes are HTTP statuses that are themselves a blocking signal.
var blockStatusCodes = map[int]bool{
	403: true,
	429: true,
	503: true,
}

var captchaRegex = regexp.MustCompile(`(?i)captcha|recaptcha|hcaptcha|cloudflare|challenge|verify you are human|security check|unusual traffic|robot|automated`)

var ipBanRegex = regexp.MustCompile(`(?i)ip.*banned|ip.*blocked|access denied|forbidden|too many requests|rate limit exceeded|temporarily blocked`)

var captchaIframeRegex = regexp.MustCompile(`(?i)recaptcha|hcaptcha`)
var captchaClassRegex = regexp.MustCompile(`(?i)captcha|recaptcha|hcaptcha`)
var captchaFormActionRegex = regexp.MustCompile(`(?i)captcha`)

// Result is the outcome of running every detection check against one
// response. BlockType names the classification that drove Blocked to true,
// following the precedence http_block > captcha > ip_ban.
type Result struct {
	Blocked         bool
	BlockType       string
	HTTPBlock       string
	CaptchaDetected bool
	IPBanDetected   bool
	StatusCode      int
}

// Detect runs the full blocking classification against one fetched page.
// It never returns an error: a body that fails to parse as HTML is simply
// treated as not containing a CAPTCHA/IP-ban marker, matching the permissive
// fallback in original_source's detect_captcha/detect_ip_ban.
func Detect(body []byte, statusCode int, url string) Result {
	res := Result{StatusCode: statusCode}

	if block := detectHTTPBlock(statusCode); block != "" {
		res.Blocked = true
		res.HTTPBlock = block
		res.BlockType = block
	}

	if detectCaptcha(body) {
		res.Blocked = true
		res.CaptchaDetected = true
		if res.BlockType == "" {
			res.BlockType = "CAPTCHA"
		}
	}

	if detectIPBan(body, statusCode) {
		res.Blocked = true
		res.IPBanDetected = true
		if res.BlockType == "" {
			res.BlockType = "IP_BAN"
		}
	}

	return res
}

func detectHTTPBlock(statusCode int) string {
	switch statusCode {
	case 403:
		return "HTTP_403_FORBIDDEN"
	case 429:
		return "HTTP_429_RATE_LIMIT"
	case 503:
		return "HTTP_503_SERVICE_UNAVAILABLE"
	}
	if blockStatusCodes[statusCode] {
		return "HTTP_BLOCKED"
	}
	return ""
}

func detectCaptcha(body []byte) bool {
	if captchaRegex.Match(body) {
		return true
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return false
	}

	found := false
	doc.Find("iframe").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if src, ok := s.Attr("src"); ok && captchaIframeRegex.MatchString(src) {
			found = true
			return false
		}
		return true
	})
	if found {
		return true
	}

	doc.Find("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if class, ok := s.Attr("class"); ok && captchaClassRegex.MatchString(class) {
			found = true
			return false
		}
		if id, ok := s.Attr("id"); ok && captchaClassRegex.MatchString(id) {
			found = true
			return false
		}
		return true
	})
	if found {
		return true
	}

	doc.Find("form").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if action, ok := s.Attr("action"); ok && captchaFormActionRegex.MatchString(action) {
			found = true
			return false
		}
		return true
	})
	if found {
		return true
	}

	return doc.Find("#cf-wrapper").Length() > 0
}

func detectIPBan(body []byte, statusCode int) bool {
	if statusCode == 429 {
		return true
	}
	return ipBanRegex.Match(body)
}
