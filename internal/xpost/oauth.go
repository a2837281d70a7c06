package xpost

import (
	"crypto/rand"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/asahigaoka/sitehooks/internal/utils"
	"github.com/dghubble/oauth1"
)

const nonceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Credentials are the consumer and access token pairs of the posting account.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Signer produces OAuth 1.0a HMAC-SHA1 Authorization headers.
type Signer struct {
	creds Credentials
	now   func() time.Time
	nonce func() string
}

func NewSigner(creds Credentials) *Signer {
	return &Signer{creds: creds, now: time.Now, nonce: randomNonce}
}

// Signature computes the HMAC-SHA1 signature over method, URL and params.
func Signature(method, rawURL string, params map[string]string, consumerSecret, tokenSecret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, utils.PercentEncode(k)+"="+utils.PercentEncode(params[k]))
	}

	base := strings.ToUpper(method) + "&" +
		utils.PercentEncode(rawURL) + "&" +
		utils.PercentEncode(strings.Join(pairs, "&"))

	// HMACSigner joins the secrets with "&" as given, so they go in encoded.
	signer := &oauth1.HMACSigner{ConsumerSecret: utils.PercentEncode(consumerSecret)}
	sig, err := signer.Sign(utils.PercentEncode(tokenSecret), base)
	if err != nil {
		return ""
	}
	return sig
}

// Authorization returns the header value for one request. JSON bodies are
// not part of the signature.
func (s *Signer) Authorization(method, rawURL string) string {
	params := map[string]string{
		"oauth_consumer_key":     s.creds.ConsumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": (&oauth1.HMACSigner{}).Name(),
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_token":            s.creds.AccessToken,
		"oauth_version":          "1.0",
	}
	params["oauth_signature"] = Signature(method, rawURL, params, s.creds.ConsumerSecret, s.creds.AccessTokenSecret)

	order := []string{
		"oauth_consumer_key",
		"oauth_nonce",
		"oauth_signature_method",
		"oauth_timestamp",
		"oauth_token",
		"oauth_version",
		"oauth_signature",
	}
	parts := make([]string, 0, len(order))
	for _, k := range order {
		parts = append(parts, utils.PercentEncode(k)+`="`+utils.PercentEncode(params[k])+`"`)
	}
	return "OAuth " + strings.Join(parts, ", ")
}

func randomNonce() string {
	var b strings.Builder
	limit := big.NewInt(int64(len(nonceAlphabet)))
	for i := 0; i < 32; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(err)
		}
		b.WriteByte(nonceAlphabet[n.Int64()])
	}
	return b.String()
}
