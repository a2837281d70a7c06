package chatbot

import (
	"context"
	"strings"
	"time"

	"github.com/asahigaoka/sitehooks/internal/ai"
	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/line"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/asahigaoka/sitehooks/internal/models"
)

const (
	TextOnlyReply    = "申し訳ございません。現在テキストメッセージのみ対応しております。"
	EmptyAnswerReply = "申し訳ございません。回答を生成できませんでした。もう一度お試しください。"
	BusyReply        = "申し訳ございません。現在AIアシスタントが混み合っております。しばらくしてからお試しください。"
	UnreachableReply = "申し訳ございません。AIアシスタントに接続できませんでした。"
	UnexpectedReply  = "申し訳ございません。予期しないエラーが発生しました。"

	chatUserPrefix = "line_user_"
)

// ConversationStore keeps the chat log per user.
type ConversationStore interface {
	LatestConversationID(ctx context.Context, lineUserID string) (string, error)
	SaveTurn(ctx context.Context, turn models.ConversationTurn) error
}

// Chat answers a query, continuing a conversation when an id is given.
type Chat interface {
	Send(ctx context.Context, query, user, conversationID string) (ai.ChatReply, error)
}

// Replier answers a webhook event by reply token.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

type Service struct {
	store   ConversationStore
	chat    Chat
	replier Replier
}

func NewService(store ConversationStore, chat Chat, replier Replier) *Service {
	return &Service{store: store, chat: chat, replier: replier}
}

// HandleEvents answers every message event of the payload in order. Failures
// of the store or the reply call are logged and never abort the batch.
func (s *Service) HandleEvents(ctx context.Context, payload line.WebhookPayload) {
	for _, event := range payload.Events {
		if event.Type != line.EventTypeMessage || event.Message == nil {
			logger.Component("chatbot").Debug().Str("type", event.Type).Msg("Skipping non-message event")
			continue
		}

		if event.Message.Type != line.MessageTypeText {
			s.reply(ctx, event.ReplyToken, TextOnlyReply)
			continue
		}

		s.handleText(ctx, event)
	}
}

func (s *Service) handleText(ctx context.Context, event line.Event) {
	log := logger.Component("chatbot")
	userID := event.UserID()
	query := event.Message.Text

	log.Info().Str("user", userID).Int("length", len([]rune(query))).Msg("Processing chat message")

	s.save(ctx, models.ConversationTurn{
		LineUserID:  userID,
		MessageType: models.MessageTypeUser,
		Content:     query,
	})

	conversationID, err := s.store.LatestConversationID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("Failed to look up conversation id")
		conversationID = ""
	}

	start := time.Now()
	answer, newConversationID, fallback := s.ask(ctx, query, userID, conversationID)

	s.save(ctx, models.ConversationTurn{
		LineUserID:         userID,
		MessageType:        models.MessageTypeAssistant,
		Content:            answer,
		DifyConversationID: newConversationID,
		ResponseTimeMs:     models.Elapsed(start),
		IsFallback:         fallback,
	})

	s.reply(ctx, event.ReplyToken, answer)
}

// ask returns the answer text, the conversation id to continue with and
// whether the answer is a canned fallback.
func (s *Service) ask(ctx context.Context, query, userID, conversationID string) (string, string, bool) {
	reply, err := s.chat.Send(ctx, query, chatUserPrefix+userID, conversationID)
	if err != nil {
		logger.Component("chatbot").Error().Err(err).Str("user", userID).Msg("Chat request failed")
		return FallbackFor(err), "", true
	}
	if strings.TrimSpace(reply.Answer) == "" {
		return EmptyAnswerReply, reply.ConversationID, false
	}
	return reply.Answer, reply.ConversationID, false
}

// FallbackFor picks the canned answer for a failed chat request.
func FallbackFor(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindUpstream:
		return BusyReply
	case apperr.KindConnectivity:
		return UnreachableReply
	default:
		return UnexpectedReply
	}
}

func (s *Service) save(ctx context.Context, turn models.ConversationTurn) {
	if err := s.store.SaveTurn(ctx, turn); err != nil {
		logger.Component("chatbot").Error().Err(err).Str("type", turn.MessageType).Msg("Failed to save conversation")
	}
}

func (s *Service) reply(ctx context.Context, token, text string) {
	if err := s.replier.Reply(ctx, token, text); err != nil {
		logger.Component("chatbot").Error().Err(err).Msg("Failed to reply")
	}
}
