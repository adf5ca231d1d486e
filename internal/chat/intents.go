package chat

import "strings"

// quickReply pairs a keyword with a canned answer. Checked in order so the
// first matching keyword wins, same for every request.
type quickReply struct {
	Keyword string
	Reply   string
}

var quickReplies = []quickReply{
	{"hello", "👋 Hi there! How can I help you today?"},
	{"book stall", "Sure! Please share your name, event type, and stall type."},
	{"price", "💰 Our pricing depends on your event and stall size. Would you like our package details?"},
	{"contact", "📞 You can reach us at +91 95660 61075 or email klstall.decors@gmail.com."},
	{"location", "📍 We're based in Thirukkazhukundram, Tamil Nadu."},
}

// MatchIntent answers common questions without an LLM round trip.
// Matching is case-insensitive substring, like the original widget.
func MatchIntent(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, qr := range quickReplies {
		if strings.Contains(lower, qr.Keyword) {
			return qr.Reply, true
		}
	}
	return "", false
}
