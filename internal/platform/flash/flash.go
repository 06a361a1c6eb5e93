// Package flash implements one-time categorized notices carried in a cookie.
// A message added during one request is rendered on the next page and then
// discarded, the usual server-rendered "flash" behavior.
package flash

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

// cookieName is the cookie used to carry pending messages across a redirect.
const cookieName = "flash"

// contextKey tracks messages added during the current request, since they
// live in the response header and are not yet visible as a request cookie.
const contextKey = "flash.pending"

// CategorySuccess marks messages rendered as success notices.
const CategorySuccess = "success"

// CategoryNotice marks plain informational messages.
const CategoryNotice = "notice"

// Message is a single one-time notice.
type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Add appends a message to the pending flash cookie.
// Encoding errors are dropped; a lost notice is not worth failing a request.
func Add(c *gin.Context, category, text string) {
	msgs := append(read(c), Message{Category: category, Text: text})
	c.Set(contextKey, msgs)
	data, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	c.SetCookie(cookieName, base64.RawURLEncoding.EncodeToString(data), 0, "/", "", false, true)
}

// Pop returns all pending messages and clears them.
func Pop(c *gin.Context) []Message {
	msgs := read(c)
	if len(msgs) > 0 {
		c.Set(contextKey, []Message(nil))
		c.SetCookie(cookieName, "", -1, "/", "", false, true)
	}
	return msgs
}

// read returns the pending messages for this request.
// Malformed cookies read as empty.
func read(c *gin.Context) []Message {
	if v, ok := c.Get(contextKey); ok {
		msgs, _ := v.([]Message)
		return msgs
	}
	cookie, err := c.Request.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil
	}
	return msgs
}
