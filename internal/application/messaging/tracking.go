package messaging

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// PixelGIF is a transparent 1x1 GIF served by the open-tracking endpoint
var PixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00,
	0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02,
	0x44, 0x01, 0x00, 0x3b,
}

// hrefPattern matches double-quoted absolute http(s) links
var hrefPattern = regexp.MustCompile(`(?i)href="(https?://[^"]+)"`)

// sigLen is the number of HMAC bytes carried in a click link
const sigLen = 16

// Tracker builds tracking URLs under a public base URL. Click links carry an
// HMAC of the message id and target so the redirect only follows links this
// service issued.
type Tracker struct {
	base string
	key  []byte
}

// NewTracker creates a Tracker. An empty base disables tracking. An empty key
// is replaced by a random one, so links only verify within this process.
func NewTracker(baseURL, signingKey string) *Tracker {
	key := []byte(signingKey)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &Tracker{
		base: strings.TrimRight(baseURL, "/"),
		key:  key,
	}
}

// Enabled reports whether a base URL is configured
func (t *Tracker) Enabled() bool {
	return t.base != ""
}

// PixelURL is the open-tracking image for a message
func (t *Tracker) PixelURL(id uuid.UUID) string {
	return t.base + "/t/o/" + id.String() + ".gif"
}

// ClickURL wraps target in the signed click-tracking redirect
func (t *Tracker) ClickURL(id uuid.UUID, target string) string {
	return t.base + "/t/c/" + id.String() + "?u=" + url.QueryEscape(target) + "&s=" + t.Sign(id, target)
}

// Sign returns the link signature for a (message, target) pair
func (t *Tracker) Sign(id uuid.UUID, target string) string {
	mac := hmac.New(sha256.New, t.key)
	mac.Write([]byte(id.String()))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(target))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:sigLen])
}

// VerifyClick reports whether sig was issued for this message and target
func (t *Tracker) VerifyClick(id uuid.UUID, target, sig string) bool {
	if sig == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(t.Sign(id, target)))
}

// Instrument rewrites absolute links through the click redirect and appends
// the open pixel. Links already pointing at the tracker are left alone.
func (t *Tracker) Instrument(html string, id uuid.UUID) string {
	if !t.Enabled() || html == "" {
		return html
	}
	out := hrefPattern.ReplaceAllStringFunc(html, func(m string) string {
		target := hrefPattern.FindStringSubmatch(m)[1]
		if strings.HasPrefix(target, t.base+"/t/") {
			return m
		}
		// html/template output escapes & in attributes
		raw := strings.ReplaceAll(target, "&amp;", "&")
		return `href="` + t.ClickURL(id, raw) + `"`
	})

	pixel := `<img src="` + t.PixelURL(id) + `" width="1" height="1" alt="" style="display:none">`
	if i := strings.LastIndex(strings.ToLower(out), "</body>"); i >= 0 {
		return out[:i] + pixel + out[i:]
	}
	return out + pixel
}

// ValidTarget reports whether a redirect target is an absolute http(s) URL
func ValidTarget(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
