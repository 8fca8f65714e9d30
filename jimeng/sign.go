package jimeng

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	signAlgorithm = "HMAC-SHA256"
	signService   = "cv"
)

// signer implements the Volcengine V4 request signature for the visual
// service. All requests are POSTs against "/" with the action carried in
// the query string, which keeps the canonical request simple.
type signer struct {
	accessKey string
	secretKey string
	region    string
	host      string
}

// signedHeaders holds the headers Sign produced for one request, in the
// order they must be set on the outbound http.Request.
type signedHeaders struct {
	Date          string
	Authorization string
	ContentSha256 string
	ContentType   string
}

// Sign computes the V4 signature for a POST with the given query parameters
// and JSON body. The caller supplies now so tests can pin the timestamp.
func (s *signer) Sign(query url.Values, body []byte, now time.Time) signedHeaders {
	t := now.UTC()
	date := t.Format("20060102T150405Z")
	datestamp := t.Format("20060102")

	payloadHash := sha256Hex(body)
	const contentType = "application/json"

	canonicalHeaders := "content-type:" + contentType + "\n" +
		"host:" + s.host + "\n" +
		"x-content-sha256:" + payloadHash + "\n" +
		"x-date:" + date + "\n"
	const signedHeaderNames = "content-type;host;x-content-sha256;x-date"

	canonicalRequest := strings.Join([]string{
		"POST",
		"/",
		canonicalQuery(query),
		canonicalHeaders,
		signedHeaderNames,
		payloadHash,
	}, "\n")

	scope := datestamp + "/" + s.region + "/" + signService + "/request"
	stringToSign := strings.Join([]string{
		signAlgorithm,
		date,
		scope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	kDate := hmacSHA256([]byte(s.secretKey), datestamp)
	kRegion := hmacSHA256(kDate, s.region)
	kService := hmacSHA256(kRegion, signService)
	kSigning := hmacSHA256(kService, "request")
	signature := hex.EncodeToString(hmacSHA256(kSigning, stringToSign))

	authorization := fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		signAlgorithm, s.accessKey, scope, signedHeaderNames, signature)

	return signedHeaders{
		Date:          date,
		Authorization: authorization,
		ContentSha256: payloadHash,
		ContentType:   contentType,
	}
}

// canonicalQuery renders query parameters sorted by key, matching the form
// the vendor signs against.
func canonicalQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+query.Get(k))
	}
	return strings.Join(parts, "&")
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, msg string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return mac.Sum(nil)
}
