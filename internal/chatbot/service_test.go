package chatbot

import (
	"context"
	"errors"
	"testing"

	"github.com/asahigaoka/sitehooks/internal/ai"
	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/line"
	"github.com/asahigaoka/sitehooks/internal/models"
	"github.com/go-playground/assert/v2"
)

type fakeStore struct {
	turns     []models.ConversationTurn
	latest    string
	lookupErr error
	saveErr   error
}

func (f *fakeStore) LatestConversationID(ctx context.Context, userID string) (string, error) {
	return f.latest, f.lookupErr
}

func (f *fakeStore) SaveTurn(ctx context.Context, turn models.ConversationTurn) error {
	f.turns = append(f.turns, turn)
	return f.saveErr
}

type fakeChat struct {
	reply ai.ChatReply
	err   error

	gotUser, gotConversation string
}

func (f *fakeChat) Send(ctx context.Context, query, user, conversationID string) (ai.ChatReply, error) {
	f.gotUser, f.gotConversation = user, conversationID
	return f.reply, f.err
}

type fakeReplier struct {
	replies map[string]string
	err     error
}

func (f *fakeReplier) Reply(ctx context.Context, token, text string) error {
	if f.replies == nil {
		f.replies = map[string]string{}
	}
	f.replies[token] = text
	return f.err
}

func textEvent(token, user, text string) line.Event {
	return line.Event{
		Type:       line.EventTypeMessage,
		ReplyToken: token,
		Source:     line.Source{Type: "user", UserID: user},
		Message:    &line.Message{Type: line.MessageTypeText, Text: text},
	}
}

func TestHandleTextContinuesConversation(t *testing.T) {
	store := &fakeStore{latest: "conv-1"}
	chat := &fakeChat{reply: ai.ChatReply{Answer: "ゴミの日は火曜日です", ConversationID: "conv-2"}}
	replier := &fakeReplier{}
	svc := NewService(store, chat, replier)

	svc.HandleEvents(context.Background(), line.WebhookPayload{Events: []line.Event{textEvent("r1", "U1", "ゴミの日は？")}})

	assert.Equal(t, "line_user_U1", chat.gotUser)
	assert.Equal(t, "conv-1", chat.gotConversation)
	assert.Equal(t, "ゴミの日は火曜日です", replier.replies["r1"])
	assert.Equal(t, 2, len(store.turns))
	assert.Equal(t, models.MessageTypeUser, store.turns[0].MessageType)
	assert.Equal(t, "conv-2", store.turns[1].DifyConversationID)
	assert.Equal(t, false, store.turns[1].IsFallback)
	assert.NotEqual(t, nil, store.turns[1].ResponseTimeMs)
}

func TestHandleEventsFallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"upstream", apperr.Upstream(503, "", "chat service error: %d", 503), BusyReply},
		{"connectivity", apperr.Connectivity(errors.New("dial tcp"), "chat service unreachable"), UnreachableReply},
		{"other", errors.New("boom"), UnexpectedReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{lookupErr: errors.New("timeout")}
			replier := &fakeReplier{}
			svc := NewService(store, &fakeChat{err: tt.err}, replier)

			svc.HandleEvents(context.Background(), line.WebhookPayload{Events: []line.Event{textEvent("r", "U", "hi")}})

			assert.Equal(t, tt.want, replier.replies["r"])
			assert.Equal(t, true, store.turns[1].IsFallback)
		})
	}
}

func TestHandleEventsNonText(t *testing.T) {
	store := &fakeStore{}
	chat := &fakeChat{}
	replier := &fakeReplier{}
	svc := NewService(store, chat, replier)

	sticker := line.Event{Type: line.EventTypeMessage, ReplyToken: "r1", Message: &line.Message{Type: "sticker"}}
	follow := line.Event{Type: "follow", ReplyToken: "r2"}
	svc.HandleEvents(context.Background(), line.WebhookPayload{Events: []line.Event{sticker, follow}})

	assert.Equal(t, TextOnlyReply, replier.replies["r1"])
	assert.Equal(t, 1, len(replier.replies))
	assert.Equal(t, 0, len(store.turns))
	assert.Equal(t, "", chat.gotUser)
}

func TestHandleEventsEmptyAnswerAndFailures(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("insert failed")}
	replier := &fakeReplier{err: errors.New("reply failed")}
	svc := NewService(store, &fakeChat{reply: ai.ChatReply{ConversationID: "c"}}, replier)

	ev := textEvent("r1", "", "hi")
	ev2 := textEvent("r2", "U2", "again")
	svc.HandleEvents(context.Background(), line.WebhookPayload{Events: []line.Event{ev, ev2}})

	assert.Equal(t, EmptyAnswerReply, replier.replies["r1"])
	assert.Equal(t, EmptyAnswerReply, replier.replies["r2"])
	assert.Equal(t, "unknown", store.turns[0].LineUserID)
	assert.Equal(t, false, store.turns[1].IsFallback)
}

func TestHandleEventsBlankAnswer(t *testing.T) {
	store := &fakeStore{}
	replier := &fakeReplier{}
	svc := NewService(store, &fakeChat{reply: ai.ChatReply{Answer: "  \n ", ConversationID: "c"}}, replier)

	svc.HandleEvents(context.Background(), line.WebhookPayload{Events: []line.Event{textEvent("r1", "U1", "質問")}})

	assert.Equal(t, EmptyAnswerReply, replier.replies["r1"])
	assert.Equal(t, EmptyAnswerReply, store.turns[1].Content)
	assert.Equal(t, "c", store.turns[1].DifyConversationID)
}
