package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/model"
)

func TestMemoryKeepsFirstAndNewest(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil, 3)

	for i := 1; i <= 5; i++ {
		require.NoError(t, m.AppendInstruction(ctx, host.Instruction{
			Text:   fmt.Sprintf("msg %d", i),
			UserID: "u1",
		}))
	}

	key := ConversationKey(host.Instruction{UserID: "u1"})
	msgs := m.Messages(key)
	require.Len(t, msgs, 3)
	assert.Equal(t, "msg 1", msgs[0].Text)
	assert.Equal(t, "msg 4", msgs[1].Text)
	assert.Equal(t, "msg 5", msgs[2].Text)

	m.Reset()
	assert.Zero(t, m.Len(key))
}

func TestConversationKey(t *testing.T) {
	assert.Equal(t, "c9", ConversationKey(host.Instruction{ConversationID: "c9", UserID: "u1"}))
	assert.Equal(t, "user:u1", ConversationKey(host.Instruction{UserID: "u1"}))
	assert.Equal(t, "default", ConversationKey(host.Instruction{}))
}

type failingChat struct{ err error }

func (f failingChat) AppendInstruction(context.Context, host.Instruction) error { return f.err }

func TestFanoutDeliversToEverySink(t *testing.T) {
	ctx := context.Background()
	first := NewMemory(nil, 10)
	second := NewMemory(nil, 10)
	boom := errors.New("boom")

	err := Fanout{first, failingChat{err: boom}, nil, second}.AppendInstruction(ctx, host.Instruction{Text: "hi", ConversationID: "c"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, first.Len("c"))
	assert.Equal(t, 1, second.Len("c"))

	assert.NoError(t, Fanout{first}.AppendInstruction(ctx, host.Instruction{Text: "again", ConversationID: "c"}))
}

type fakeSession struct {
	mailbox string
	msg     []byte
	closed  bool
	err     error
}

func (s *fakeSession) Append(mailbox string, msg []byte) error {
	s.mailbox = mailbox
	s.msg = msg
	return s.err
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type mapSecrets map[string]string

func (m mapSecrets) Get(key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", errors.New("missing")
	}
	return v, nil
}

func TestMailboxAppendsMessage(t *testing.T) {
	sess := &fakeSession{}
	mb := NewMailbox(model.MailboxConfig{
		Host:     "imap.example.com",
		Username: "me@example.com",
		Mailbox:  "Reminders",
	}, nil, nil)
	mb.dial = func(context.Context) (session, error) { return sess, nil }
	mb.now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }

	text := "Hi Alex!\nReminder: the todo \"Water the plants\" is due now.\n{\"id\":\"t1\"}"
	require.NoError(t, mb.AppendInstruction(context.Background(), host.Instruction{Text: text, UserID: "u1"}))

	assert.True(t, sess.closed)
	assert.Equal(t, "Reminders", sess.mailbox)

	mr, err := mail.CreateReader(bytes.NewReader(sess.msg))
	require.NoError(t, err)
	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Hi Alex!", subject)
	assert.Equal(t, "u1", mr.Header.Get("X-Todo-User"))

	from, err := mr.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "me@example.com", from[0].Address)

	part, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Equal(t, text, strings.TrimRight(string(body), "\r\n"))
}

func TestMailboxAppendError(t *testing.T) {
	sess := &fakeSession{err: errors.New("quota exceeded")}
	mb := NewMailbox(model.MailboxConfig{Username: "me@example.com"}, nil, nil)
	mb.dial = func(context.Context) (session, error) { return sess, nil }

	err := mb.AppendInstruction(context.Background(), host.Instruction{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.True(t, sess.closed)
}

func TestMailboxPassword(t *testing.T) {
	tests := []struct {
		name    string
		cfg     model.MailboxConfig
		secrets Secrets
		want    string
		wantErr bool
	}{
		{name: "inline", cfg: model.MailboxConfig{Password: "p", CredentialKey: "k"}, secrets: mapSecrets{"k": "other"}, want: "p"},
		{name: "keyring", cfg: model.MailboxConfig{CredentialKey: "k"}, secrets: mapSecrets{"k": "secret"}, want: "secret"},
		{name: "keyring missing", cfg: model.MailboxConfig{CredentialKey: "k"}, secrets: mapSecrets{}, wantErr: true},
		{name: "no store", cfg: model.MailboxConfig{CredentialKey: "k"}, wantErr: true},
		{name: "none configured", cfg: model.MailboxConfig{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewMailbox(tt.cfg, tt.secrets, nil).password()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, "Todo reminder", subjectFor("   "))
	assert.Equal(t, "first", subjectFor("first\nsecond"))
	long := strings.Repeat("å", 100)
	got := subjectFor(long)
	assert.Len(t, []rune(got), subjectLimit)
	assert.True(t, strings.HasSuffix(got, "..."))
}
