package timeline

import (
	"strconv"

	"github.com/almas-cp/Saner-sub000/internal/models"
)

// The two backend schemas disagree on field names (messages.content vs
// chat_messages.message) and on how the receiving party is expressed. Each
// source gets exactly one normalization function; nothing else in the module
// is allowed to know about the difference.

// FromDirectMessage normalizes a row of the regular messages table.
func FromDirectMessage(message models.DirectMessage) Message {
	return Message{
		ID:         strconv.FormatInt(message.ID, 10),
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Content:    message.Content,
		ReadAt:     message.ReadAt,
		CreatedAt:  message.CreatedAt,
	}
}

// FromChatMessage normalizes a consultation chat_messages row. The receiver is
// derived from the chat binding: whichever party did not send. System messages
// carry no sender and no receiver.
func FromChatMessage(message models.ChatMessage, chat *models.Chat) Message {
	normalized := Message{
		ID:         strconv.FormatInt(message.ID, 10),
		SenderType: message.SenderType,
		Content:    message.Message,
		CreatedAt:  message.CreatedAt,
	}
	if message.SenderID != nil {
		normalized.SenderID = *message.SenderID
	}
	if chat != nil {
		switch message.SenderType {
		case models.SenderTypeClient:
			normalized.ReceiverID = chat.ProfessionalID
		case models.SenderTypeProfessional:
			normalized.ReceiverID = chat.ClientID
		}
	}
	return normalized
}
