package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tasklist/internal/core/domain"
	"tasklist/internal/core/model/response"
)

// CursorCodec signs keyset cursors bound to the owner they were issued to.
// Decode rejects a cursor presented by anyone else.
type CursorCodec struct {
	secret []byte
}

func NewCursorCodec(secret string) *CursorCodec {
	return &CursorCodec{secret: []byte(secret)}
}

func (cc *CursorCodec) hmacSignature(encoded string) string {
	mac := hmac.New(sha256.New, cc.secret)
	mac.Write([]byte(encoded))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

func (cc *CursorCodec) verifySignature(encoded string, signature string) bool {
	expectedSignature := cc.hmacSignature(encoded)
	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}

func (cc *CursorCodec) Encode(ownerID int, createdAt time.Time, id int) string {
	data := response.CursorData{Owner: ownerID, Datetime: createdAt.UTC().Format(time.RFC3339Nano), ID: id}
	jsonData, _ := json.Marshal(data)
	encoded := base64.URLEncoding.EncodeToString(jsonData)

	return encoded + "." + cc.hmacSignature(encoded)
}

func (cc *CursorCodec) Decode(ownerID int, token string) (time.Time, int, error) {
	parts := strings.Split(token, ".")

	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("%w: bad format", domain.ErrInvalidCursor)
	}

	if !cc.verifySignature(parts[0], parts[1]) {
		return time.Time{}, 0, fmt.Errorf("%w: bad signature", domain.ErrInvalidCursor)
	}

	decoded, err := base64.URLEncoding.DecodeString(parts[0])

	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	var cursor response.CursorData

	if err := json.Unmarshal(decoded, &cursor); err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	if cursor.Owner != ownerID {
		return time.Time{}, 0, fmt.Errorf("%w: issued to another owner", domain.ErrInvalidCursor)
	}

	datetime, err := time.Parse(time.RFC3339Nano, cursor.Datetime)

	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	return datetime, cursor.ID, nil
}
