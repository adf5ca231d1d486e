package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Message is one turn of the running conversation.
type Message struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// Completer is the external completion provider behind the quick replies.
type Completer interface {
	Complete(ctx context.Context, history []Message, message string) (string, error)
}

// maxHistory caps the rolling conversation we replay to the provider.
const maxHistory = 20

// Responder answers chat messages: quick replies first, the completion
// provider for everything else, carrying conversation history across turns.
type Responder struct {
	completer Completer

	mu      sync.Mutex
	history []Message
}

func NewResponder(completer Completer) *Responder {
	return &Responder{completer: completer}
}

// Reply produces the assistant's answer for one user message.
func (r *Responder) Reply(ctx context.Context, message string) (string, error) {
	// both turns go into history either way; Gemini expects an alternating
	// user/model transcript
	if reply, ok := MatchIntent(message); ok {
		r.remember(Message{Role: "user", Text: message}, Message{Role: "model", Text: reply})
		return reply, nil
	}

	r.mu.Lock()
	history := make([]Message, len(r.history))
	copy(history, r.history)
	r.mu.Unlock()

	reply, err := r.completer.Complete(ctx, history, message)
	if err != nil {
		return "", err
	}

	r.remember(Message{Role: "user", Text: message}, Message{Role: "model", Text: reply})
	return reply, nil
}

func (r *Responder) remember(msgs ...Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, msgs...)
	if len(r.history) > maxHistory {
		r.history = r.history[len(r.history)-maxHistory:]
	}
}

// GeminiCompleter calls Google's Gemini API for messages the quick-reply
// table cannot answer.
type GeminiCompleter struct {
	apiKey string
}

func NewGeminiCompleter(apiKey string) *GeminiCompleter {
	return &GeminiCompleter{apiKey: apiKey}
}

const systemPrompt = `SYSTEM: You are the assistant for KL Stall & Decors, an event-decoration shop in Thirukkazhukundram, Tamil Nadu. Answer briefly and helpfully about stall bookings, decoration packages, pricing and events. USER: %s`

func (g *GeminiCompleter) Complete(ctx context.Context, history []Message, message string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("chat provider is not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")
	session := model.StartChat()

	for _, m := range history {
		session.History = append(session.History, &genai.Content{
			Role:  m.Role,
			Parts: []genai.Part{genai.Text(m.Text)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(fmt.Sprintf(systemPrompt, message)))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "Sorry, I couldn't understand that.", nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt), nil
		}
	}
	return "Sorry, I couldn't understand that.", nil
}
