// Package bot contains the conversation engine: the intake gate that
// admits provider events, the command router, and the Spanish reply
// formatting. It is transport-agnostic; the webhook handler feeds it
// Events and a Sender delivers the replies.
package bot

import "context"

// InteractiveReply is a button press on a previously sent prompt.
type InteractiveReply struct {
	ActionID string
	Title    string
}

// Event is one normalized inbound message from the chat provider.
type Event struct {
	Provider    string
	MessageID   string
	SenderID    string
	ChatID      string
	Text        string
	Interactive *InteractiveReply
}

// ConfirmPrompt asks the user to confirm or reject a draft expense via
// interactive buttons.
type ConfirmPrompt struct {
	ExpenseID string
}

// Outbound is one reply to deliver after the processing transaction
// commits. When Confirm is set the message carries confirm/reject buttons
// for the referenced expense.
type Outbound struct {
	Text    string
	Confirm *ConfirmPrompt
}

// Sender delivers replies to a chat. Implementations talk to the actual
// messaging provider; tests substitute a recorder.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
	SendConfirmButtons(ctx context.Context, to, text, expenseID string) error
}
