package server

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TruncateResourceContents cuts resource text so the total stays within
// maxBytes, then appends a notice entry. The cut never splits a UTF-8
// sequence. It reports whether anything was cut.
func TruncateResourceContents(contents []*mcp.ResourceContents, maxBytes int) ([]*mcp.ResourceContents, bool) {
	total := 0
	for _, rc := range contents {
		total += len(rc.Text)
	}

	if total <= maxBytes {
		return contents, false
	}

	var result []*mcp.ResourceContents
	remaining := maxBytes
	for _, rc := range contents {
		if remaining <= 0 {
			break
		}
		if len(rc.Text) <= remaining {
			result = append(result, rc)
			remaining -= len(rc.Text)
			continue
		}
		result = append(result, &mcp.ResourceContents{
			URI:      rc.URI,
			MIMEType: rc.MIMEType,
			Text:     cutUTF8(rc.Text, remaining),
		})
		remaining = 0
	}

	notice := fmt.Sprintf("\n[truncated: content exceeded limit of %d bytes]", maxBytes)
	if len(result) > 0 {
		result = append(result, &mcp.ResourceContents{
			URI:      result[0].URI,
			MIMEType: "text/plain",
			Text:     notice,
		})
	}

	return result, true
}

// cutUTF8 returns the longest prefix of s no longer than n bytes that ends
// on a rune boundary.
func cutUTF8(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
