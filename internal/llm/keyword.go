package llm

import (
	"context"
	"strings"
)

const KeywordModel = "keyword-demo"

// Canned replies returned by KeywordClient.
const (
	RefundReply       = "I understand you're looking for a refund. I'd be happy to help you with that. Could you please provide your order number so I can process this right away?"
	ShippingReply     = "Thanks for reaching out about your delivery. I've checked your order and it's currently on its way. You should receive it within 2-3 business days. I'll send you a tracking link right now."
	IssueReply        = "I'm sorry to hear you're experiencing issues. Let's get this fixed for you right away. Can you tell me exactly what's happening when you try to use it? This will help me find the best solution."
	CancellationReply = "I can help you with that cancellation. Just to confirm, which subscription or order would you like to cancel? I'll process it immediately once you let me know."
	DefaultReply      = "Thank you for contacting us! I'm here to help. Could you provide a bit more detail about what you need? That way, I can give you the most accurate assistance."
)

type keywordRoute struct {
	keywords []string
	reply    string
}

// Evaluated in order; the first route with a matching keyword wins.
var keywordRoutes = []keywordRoute{
	{keywords: []string{"refund", "money back"}, reply: RefundReply},
	{keywords: []string{"shipping", "delivery"}, reply: ShippingReply},
	{keywords: []string{"not working", "broken", "issue"}, reply: IssueReply},
	{keywords: []string{"cancel"}, reply: CancellationReply},
}

// KeywordClient is a deterministic stand-in for a model. It routes the latest user
// message to a canned reply by substring match and ignores the system prompt.
type KeywordClient struct{}

func NewKeyword() *KeywordClient { return &KeywordClient{} }

func (c *KeywordClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	return Response{Content: MatchReply(LastUserMessage(messages)), Model: KeywordModel}, nil
}

// MatchReply picks the canned reply for message.
func MatchReply(message string) string {
	lower := strings.ToLower(message)
	for _, route := range keywordRoutes {
		for _, kw := range route.keywords {
			if strings.Contains(lower, kw) {
				return route.reply
			}
		}
	}
	return DefaultReply
}
