// Package qr parses raw scanned text into typed, validated redemption requests.
//
// Two wire shapes are accepted: a JSON object ({userId, cafeName, timestamp}
// for grants, {userId, cafeName, couponId} for redemptions) and the legacy
// colon-delimited "type:userId" string, which carries neither cafe nor replay
// data. Decoding is pure; all lookups happen downstream.
package qr

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/kahvekart/kahve-kart/internal/errs"
)

// Request is a decoded scan payload consumed by the scan orchestrator.
type Request interface{ isRequest() }

// StampGrant asks for one stamp on the user's card at a cafe.
// TokenKey is the normalized timestamp used as the replay-protection key;
// it is empty for legacy payloads, which carry no replay data.
type StampGrant struct {
	UserID   string
	CafeName string
	TokenKey string
	Legacy   bool
}

func (StampGrant) isRequest() {}

// CouponRedemption asks to redeem a gift coupon at a cafe.
// CouponID is empty for legacy payloads.
type CouponRedemption struct {
	UserID   string
	CafeName string
	CouponID string
	Legacy   bool
}

func (CouponRedemption) isRequest() {}

// Legacy type keywords that classify a colon-delimited payload.
var (
	stampKeywords  = map[string]bool{"coffee": true, "kahve": true, "stamp": true}
	couponKeywords = map[string]bool{"gift": true, "coupon": true, "hediye": true, "kupon": true}
)

// Decode runs the ordered parser strategies over raw scanned text:
// JSON object first, then the legacy colon-delimited form.
func Decode(raw string) (Request, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errs.ErrInvalidFormat
	}

	if fields, ok := parseJSON(raw); ok {
		return classifyJSON(fields)
	}

	typ, userID, ok := parseLegacy(raw)
	if !ok {
		return nil, errs.ErrInvalidFormat
	}
	return classifyLegacy(typ, userID)
}

// parseJSON attempts a structured parse. Numbers are accepted for any field
// (mobile clients serialize timestamps as integers) and rendered back to text.
func parseJSON(raw string) (map[string]string, bool) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, false
	}
	fields := make(map[string]string, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case string:
			fields[k] = t
		case float64:
			fields[k] = fmt.Sprintf("%.0f", t)
		case json.Number:
			fields[k] = t.String()
		}
	}
	return fields, true
}

func classifyJSON(fields map[string]string) (Request, error) {
	userID := fields["userId"]
	cafe := fields["cafeName"]

	switch {
	case fields["couponId"] != "" && userID != "" && cafe != "":
		return CouponRedemption{UserID: userID, CafeName: cafe, CouponID: fields["couponId"]}, nil
	case userID != "" && cafe != "" && fields["timestamp"] != "":
		return StampGrant{UserID: userID, CafeName: cafe, TokenKey: NormalizeTimestamp(fields["timestamp"])}, nil
	case fields["type"] != "" && userID != "":
		return classifyLegacy(fields["type"], userID)
	default:
		return nil, errs.ErrUnknownQRType
	}
}

// parseLegacy splits the "type:userId" form. The type must be a bare word,
// otherwise arbitrary text containing a colon would masquerade as a payload.
func parseLegacy(raw string) (typ, userID string, ok bool) {
	typ, userID, found := strings.Cut(raw, ":")
	typ = strings.TrimSpace(typ)
	userID = strings.TrimSpace(userID)
	if !found || typ == "" || userID == "" {
		return "", "", false
	}
	for _, r := range typ {
		if !unicode.IsLetter(r) {
			return "", "", false
		}
	}
	return typ, userID, true
}

func classifyLegacy(typ, userID string) (Request, error) {
	switch key := strings.ToLower(strings.TrimSpace(typ)); {
	case stampKeywords[key]:
		return StampGrant{UserID: userID, Legacy: true}, nil
	case couponKeywords[key]:
		return CouponRedemption{UserID: userID, Legacy: true}, nil
	default:
		return nil, errs.ErrUnknownQRType
	}
}

// NormalizeTimestamp strips punctuation and spacing from a timestamp so that
// every rendering of the same instant maps to the same replay-token key.
func NormalizeTimestamp(ts string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, ts)
}
