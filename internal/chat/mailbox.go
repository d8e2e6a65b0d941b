package chat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/model"
)

// subjectLimit caps the subject derived from an instruction's first line.
const subjectLimit = 78

// Secrets looks up stored credentials.
type Secrets interface {
	Get(key string) (string, error)
}

// session is an authenticated mailbox connection.
type session interface {
	Append(mailbox string, msg []byte) error
	Close() error
}

// dialFunc opens a session.
type dialFunc func(ctx context.Context) (session, error)

// Mailbox delivers instructions as messages appended to an IMAP mailbox,
// where a mail-reading assistant can pick them up.
type Mailbox struct {
	cfg     model.MailboxConfig
	secrets Secrets
	logger  *zap.Logger
	dial    dialFunc
	now     func() time.Time
}

// NewMailbox returns a Mailbox for cfg. When cfg.Password is empty the
// password is read from secrets under cfg.CredentialKey.
func NewMailbox(cfg model.MailboxConfig, secrets Secrets, logger *zap.Logger) *Mailbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.Port == "" {
		cfg.Port = "993"
	}
	m := &Mailbox{
		cfg:     cfg,
		secrets: secrets,
		logger:  logger.Named("mailbox"),
		now:     time.Now,
	}
	m.dial = m.connect
	return m
}

// AppendInstruction implements host.Chat.
func (m *Mailbox) AppendInstruction(ctx context.Context, in host.Instruction) error {
	msg, err := m.compose(in)
	if err != nil {
		return err
	}

	s, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			m.logger.Warn("closing IMAP session", zap.Error(err))
		}
	}()

	if err := s.Append(m.cfg.Mailbox, msg); err != nil {
		return fmt.Errorf("appending to %s: %w", m.cfg.Mailbox, err)
	}

	m.logger.Info("instruction delivered",
		zap.String("mailbox", m.cfg.Mailbox),
		zap.String("user_id", in.UserID))
	return nil
}

// compose renders in as a plain-text RFC 5322 message.
func (m *Mailbox) compose(in host.Instruction) ([]byte, error) {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	var h mail.Header
	h.SetDate(m.now())
	h.SetSubject(subjectFor(in.Text))
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	addr := []*mail.Address{{Name: "Todo reminders", Address: from}}
	h.SetAddressList("From", addr)
	h.SetAddressList("To", []*mail.Address{{Address: m.cfg.Username}})
	if in.UserID != "" {
		h.Set("X-Todo-User", in.UserID)
	}
	if in.ConversationID != "" {
		h.Set("X-Todo-Conversation", in.ConversationID)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	if _, err := io.WriteString(w, in.Text); err != nil {
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing message: %w", err)
	}
	return buf.Bytes(), nil
}

func subjectFor(text string) string {
	subject := strings.TrimSpace(text)
	if i := strings.IndexByte(subject, '\n'); i >= 0 {
		subject = strings.TrimSpace(subject[:i])
	}
	if subject == "" {
		return "Todo reminder"
	}
	if r := []rune(subject); len(r) > subjectLimit {
		subject = string(r[:subjectLimit-3]) + "..."
	}
	return subject
}

func (m *Mailbox) password() (string, error) {
	if m.cfg.Password != "" || m.cfg.CredentialKey == "" {
		return m.cfg.Password, nil
	}
	if m.secrets == nil {
		return "", fmt.Errorf("no credential store for key %q", m.cfg.CredentialKey)
	}
	return m.secrets.Get(m.cfg.CredentialKey)
}

// connect dials the server and logs in.
func (m *Mailbox) connect(_ context.Context) (session, error) {
	password, err := m.password()
	if err != nil {
		return nil, err
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	var client *imapclient.Client
	if m.cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(m.cfg.Username, password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authentication failed for %s: %w", m.cfg.Username, err)
	}
	return &imapSession{client: client}, nil
}

// imapSession adapts an imapclient.Client to session.
type imapSession struct {
	client *imapclient.Client
}

func (s *imapSession) Append(mailbox string, msg []byte) error {
	cmd := s.client.Append(mailbox, int64(len(msg)), nil)
	if _, err := cmd.Write(msg); err != nil {
		_ = cmd.Close()
		return err
	}
	if err := cmd.Close(); err != nil {
		return err
	}
	_, err := cmd.Wait()
	return err
}

func (s *imapSession) Close() error {
	return s.client.Logout().Wait()
}
