package presenter

import "strings"

const (
	seeMorePadding = 500
	zeroWidthSpace = "\u200b"
	// lists longer than this get folded behind the chat's "see more" cut
	foldAfterLines = 6
)

// foldSeeMore keeps header visible and pushes body behind KakaoTalk's
// "see more" cut by padding with zero-width spaces.
func foldSeeMore(header, body string) string {
	body = strings.TrimLeft(body, "\r\n")
	if strings.TrimSpace(body) == "" {
		return header
	}
	var b strings.Builder
	b.Grow(len(header) + len(zeroWidthSpace)*seeMorePadding + len(body) + 1)
	b.WriteString(strings.TrimSpace(header))
	b.WriteString(strings.Repeat(zeroWidthSpace, seeMorePadding))
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String()
}

// foldLong folds text after its first line once it exceeds foldAfterLines.
func foldLong(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= foldAfterLines {
		return text
	}
	return foldSeeMore(lines[0], strings.Join(lines[1:], "\n"))
}
