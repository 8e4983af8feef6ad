package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/susankaotw/bulau/internal/domain"
	"github.com/susankaotw/bulau/internal/line"
	"github.com/susankaotw/bulau/internal/repository"
)

// ChatTransport defines the delivery interface for outgoing chat messages.
type ChatTransport interface {
	Reply(ctx context.Context, replyToken string, messages ...line.Message) error
	Push(ctx context.Context, userID string, messages ...line.Message) error
}

// AuditLog defines the repository interface for the write-only record side
// channel.
type AuditLog interface {
	Create(ctx context.Context, input repository.RecordInput) (string, error)
	Augment(ctx context.Context, pageID, segment, tip string) error
}

// CopyGenerator defines the interface for marketing copy generation.
type CopyGenerator interface {
	Generate(ctx context.Context, topic string) (*CopyResult, error)
}

// ChatOutcome summarizes one handled message, returned to non-chat callers
// exercising the webhook's direct JSON form.
type ChatOutcome struct {
	OK        bool   `json:"ok"`
	Help      bool   `json:"help,omitempty"`
	Empty     bool   `json:"empty,omitempty"`
	Count     int    `json:"count,omitempty"`
	Error     string `json:"error,omitempty"`
	Answer    string `json:"answer,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
}

// ChatService dispatches inbound chat text to commands: help, bind,
// status, check-in, note, topic lookup, show-all, marketing copy, and the
// default free-text lookup. Delivery, record writes, and copy generation
// are optional collaborators; a nil one disables that concern rather than
// failing the message.
type ChatService struct {
	gate       *GateService
	resolver   *ResolverService
	records    AuditLog
	transport  ChatTransport
	copywriter CopyGenerator
}

// NewChatService creates a new ChatService instance.
func NewChatService(
	gate *GateService,
	resolver *ResolverService,
	records AuditLog,
	transport ChatTransport,
	copywriter CopyGenerator,
) *ChatService {
	return &ChatService{
		gate:       gate,
		resolver:   resolver,
		records:    records,
		transport:  transport,
		copywriter: copywriter,
	}
}

var (
	helpPattern    = regexp.MustCompile(`(?i)^(help|幫助|\?|指令)$`)
	bindPattern    = regexp.MustCompile(`^綁定\s+`)
	statusPattern  = regexp.MustCompile(`^(我的)?狀態$`)
	checkInPattern = regexp.MustCompile(`^(簽到|打卡)(\s|$)`)
	notePattern    = regexp.MustCompile(`^心得(\s|$)`)
	showAllPattern = regexp.MustCompile(`^顯示(全部|更多)\s+(.+)$`)
	topicPattern   = regexp.MustCompile(`^主題[\s:：]?\s*(.+)$`)
	copyPattern    = regexp.MustCompile(`^文案[\s：:](.+)$`)
)

// HandleEvent handles one inbound platform event. Non-text events are
// ignored.
func (s *ChatService) HandleEvent(ctx context.Context, ev line.Event) {
	if !ev.IsTextMessage() {
		return
	}
	if _, err := s.HandleText(ctx, ev.Message.Text, ev.Source.UserID, ev.ReplyToken, "LINE"); err != nil {
		log.Printf("chat: event handling failed: %v", err)
	}
}

// HandleText dispatches one text message. The returned outcome is for
// direct JSON callers; chat callers get their reply through the transport.
// Errors are returned only for internal faults the caller should log —
// denials and empty results are normal outcomes.
func (s *ChatService) HandleText(ctx context.Context, text, userID, replyToken, source string) (*ChatOutcome, error) {
	text = NormalizeQuery(text)
	if text == "" {
		return &ChatOutcome{OK: false, Error: "empty_text"}, nil
	}

	if helpPattern.MatchString(text) {
		s.replyText(ctx, replyToken, userID, helpText())
		return &ChatOutcome{OK: true, Help: true}, nil
	}

	if bindPattern.MatchString(text) || domain.IsEmail(text) {
		return s.handleBind(ctx, text, userID, replyToken), nil
	}

	if statusPattern.MatchString(text) {
		return s.handleStatus(ctx, userID, replyToken), nil
	}

	if checkInPattern.MatchString(text) {
		return s.handleCheckIn(ctx, text, userID, replyToken, source), nil
	}

	if notePattern.MatchString(text) {
		return s.handleNote(ctx, text, userID, replyToken, source), nil
	}

	if m := showAllPattern.FindStringSubmatch(text); m != nil {
		return s.handleShowAll(ctx, m[2], userID, replyToken), nil
	}

	if m := topicPattern.FindStringSubmatch(text); m != nil {
		return s.handleTopicSearch(ctx, m[1], userID, replyToken, source, nil), nil
	}

	// A bare message that exactly names a topic is treated as a topic
	// lookup.
	if probe, err := s.resolver.ResolveTopic(ctx, text, 10); err == nil && len(probe.Entries) > 0 {
		return s.handleTopicSearch(ctx, text, userID, replyToken, source, probe.Entries), nil
	}

	if m := copyPattern.FindStringSubmatch(text); m != nil {
		return s.handleCopy(ctx, m[1], userID, replyToken, source), nil
	}

	return s.handleLookup(ctx, text, userID, replyToken, source), nil
}

func (s *ChatService) handleBind(ctx context.Context, text, userID, replyToken string) *ChatOutcome {
	email := text
	if bindPattern.MatchString(email) {
		email = NormalizeQuery(bindPattern.ReplaceAllString(email, ""))
	}
	if !domain.IsEmail(email) {
		s.replyText(ctx, replyToken, userID, "請輸入正確 Email，例如：綁定 test@example.com")
		return &ChatOutcome{OK: false, Error: "invalid_email"}
	}

	if err := s.gate.Bind(ctx, userID, email); err != nil {
		log.Printf("chat: bind failed for %s: %v", email, err)
		s.replyText(ctx, replyToken, userID, "綁定失敗：找不到此 Email 的會員，或該帳號已綁定其他 LINE。")
		return &ChatOutcome{OK: false, Error: "bind_failed"}
	}

	s.replyText(ctx, replyToken, userID,
		fmt.Sprintf("✅ 已綁定 Email：%s\n之後可直接輸入關鍵字查詢、簽到或寫心得。", email))
	return &ChatOutcome{OK: true}
}

func (s *ChatService) handleStatus(ctx context.Context, userID, replyToken string) *ChatOutcome {
	member, err := s.gate.Status(ctx, userID)
	if err != nil {
		s.replyText(ctx, replyToken, userID, "尚未綁定 Email。請輸入：綁定 your@email.com")
		return &ChatOutcome{OK: false, Error: "not_bound"}
	}

	s.replyText(ctx, replyToken, userID, statusText(member))
	return &ChatOutcome{OK: true}
}

func statusText(m *domain.MemberRecord) string {
	unset := "（未設定）"
	expiry := unset
	if m.ExpiresOn != nil {
		expiry = m.ExpiresOn.Format("2006-01-02")
	}
	return strings.Join([]string{
		"📇 會員狀態",
		"Email：" + orDefault(m.Email, "（未設定或空白）"),
		"狀態：" + orDefault(m.Status, unset),
		"等級：" + orDefault(m.Tier, unset),
		"有效日期：" + expiry,
		"LINE 綁定：" + orDefault(m.ExternalChatID, unset),
	}, "\n")
}

func (s *ChatService) handleCheckIn(ctx context.Context, text, userID, replyToken, source string) *ChatOutcome {
	gate := s.gate.CheckAccess(ctx, Identity{ChatID: userID})
	if !gate.Allowed {
		s.replyText(ctx, replyToken, userID, gate.Message)
		return &ChatOutcome{OK: false, Error: "forbidden"}
	}

	content := NormalizeQuery(checkInPattern.ReplaceAllString(text, ""))
	if content == "" {
		content = "簽到"
	}
	recID := s.writeRecord(ctx, repository.RecordInput{
		Email:    gateEmail(gate),
		UserID:   userID,
		Category: repository.CategoryCheckIn,
		Content:  content,
		Source:   source,
	})

	s.replyText(ctx, replyToken, userID,
		fmt.Sprintf("✅ 已簽到！\n內容：%s\n(記錄ID: %s)", content, shortID(recID)))
	return &ChatOutcome{OK: true}
}

func (s *ChatService) handleNote(ctx context.Context, text, userID, replyToken, source string) *ChatOutcome {
	gate := s.gate.CheckAccess(ctx, Identity{ChatID: userID})
	if !gate.Allowed {
		s.replyText(ctx, replyToken, userID, gate.Message)
		return &ChatOutcome{OK: false, Error: "forbidden"}
	}

	content := NormalizeQuery(notePattern.ReplaceAllString(text, ""))
	if content == "" {
		s.replyText(ctx, replyToken, userID, "請在「心得」後面接文字，例如：心得 今天的頸胸交界手感更清楚了")
		return &ChatOutcome{OK: false, Error: "empty_note"}
	}

	recID := s.writeRecord(ctx, repository.RecordInput{
		Email:    gateEmail(gate),
		UserID:   userID,
		Category: repository.CategoryNote,
		Content:  content,
		Source:   source,
	})

	s.replyText(ctx, replyToken, userID,
		fmt.Sprintf("📝 已寫入心得！\n%s\n(記錄ID: %s)", content, shortID(recID)))
	return &ChatOutcome{OK: true}
}

func (s *ChatService) handleShowAll(ctx context.Context, query, userID, replyToken string) *ChatOutcome {
	query = NormalizeQuery(query)

	gate := s.gate.CheckAccess(ctx, Identity{ChatID: userID})
	if !gate.Allowed {
		s.replyText(ctx, replyToken, userID, gate.Message)
		return &ChatOutcome{OK: false, Error: "forbidden"}
	}

	var (
		res   *Resolution
		label string
		err   error
	)
	if m := topicPattern.FindStringSubmatch(query); m != nil {
		topic := NormalizeQuery(m[1])
		label = "主題：" + topic
		res, err = s.resolver.ResolveTopic(ctx, topic, ShowAllLimit)
	} else {
		label = query
		res, err = s.resolver.Resolve(ctx, query, ShowAllLimit)
	}
	if err != nil {
		log.Printf("chat: show-all lookup failed: %v", err)
		s.replyText(ctx, replyToken, userID, "系統忙碌中，請稍後再試。")
		return &ChatOutcome{OK: false, Error: "lookup_failed"}
	}
	if len(res.Entries) == 0 {
		s.replyText(ctx, replyToken, userID, NotFoundMessage(label))
		return &ChatOutcome{OK: true, Empty: true}
	}

	s.replyText(ctx, replyToken, userID, BuildFullDigest(label, res.Entries))
	return &ChatOutcome{OK: true, Count: len(res.Entries)}
}

func (s *ChatService) handleTopicSearch(ctx context.Context, topic, userID, replyToken, source string, preloaded []*domain.KnowledgeEntry) *ChatOutcome {
	topic = NormalizeQuery(topic)

	gate := s.gate.CheckAccess(ctx, Identity{ChatID: userID})
	if !gate.Allowed {
		s.replyText(ctx, replyToken, userID, gate.Message)
		return &ChatOutcome{OK: false, Error: "forbidden"}
	}

	recID := s.writeRecord(ctx, repository.RecordInput{
		Email:    gateEmail(gate),
		UserID:   userID,
		Category: repository.CategoryLookup,
		Content:  "主題 " + topic,
		Source:   source,
	})

	entries := preloaded
	if entries == nil {
		res, err := s.resolver.ResolveTopic(ctx, topic, 10)
		if err != nil {
			log.Printf("chat: topic lookup failed: %v", err)
			s.replyText(ctx, replyToken, userID, "系統忙碌中，請稍後再試。")
			return &ChatOutcome{OK: false, Error: "lookup_failed"}
		}
		entries = res.Entries
	}

	if len(entries) == 0 {
		s.replyText(ctx, replyToken, userID, NotFoundMessage(topic))
		return &ChatOutcome{OK: true, Empty: true}
	}

	s.augmentRecord(ctx, recID, entries[0])

	label := "主題：" + topic
	s.deliverResults(ctx, replyToken, userID, label, entries, 4, "顯示全部 主題 "+topic)
	return &ChatOutcome{OK: true, Count: len(entries)}
}

func (s *ChatService) handleLookup(ctx context.Context, text, userID, replyToken, source string) *ChatOutcome {
	gate := s.gate.CheckAccess(ctx, Identity{ChatID: userID})
	if !gate.Allowed {
		s.replyText(ctx, replyToken, userID, gate.Message)
		return &ChatOutcome{OK: false, Error: "forbidden"}
	}

	recID := s.writeRecord(ctx, repository.RecordInput{
		Email:    gateEmail(gate),
		UserID:   userID,
		Category: repository.CategoryLookup,
		Content:  text,
		Source:   source,
	})

	res, err := s.resolver.Resolve(ctx, text, DefaultLimit)
	if err != nil {
		log.Printf("chat: lookup failed: %v", err)
		s.replyText(ctx, replyToken, userID, "系統忙碌中，請稍後再試。")
		return &ChatOutcome{OK: false, Error: "lookup_failed"}
	}
	if len(res.Entries) == 0 {
		s.replyText(ctx, replyToken, userID, NotFoundMessage(text))
		return &ChatOutcome{OK: true, Empty: true}
	}

	s.augmentRecord(ctx, recID, res.Entries[0])

	s.deliverResults(ctx, replyToken, userID, "查詢："+text, res.Entries, InlineDigestLimit, "顯示全部 "+text)
	return &ChatOutcome{OK: true, Count: len(res.Entries)}
}

func (s *ChatService) handleCopy(ctx context.Context, topic, userID, replyToken, source string) *ChatOutcome {
	if s.copywriter == nil {
		s.replyText(ctx, replyToken, userID, "系統未設定 OPENAI_API_KEY，無法產生文案。")
		return &ChatOutcome{OK: false, Error: "no_openai_key"}
	}

	gate := s.gate.CheckAccess(ctx, Identity{ChatID: userID})
	if !gate.Allowed {
		s.replyText(ctx, replyToken, userID, gate.Message)
		return &ChatOutcome{OK: false, Error: "forbidden"}
	}

	topic = NormalizeQuery(topic)
	result, err := s.copywriter.Generate(ctx, topic)
	if err != nil {
		log.Printf("chat: copy generation failed: %v", err)
		s.replyText(ctx, replyToken, userID, "文案產生失敗，請稍後再試。")
		return &ChatOutcome{OK: false, Error: "copy_failed"}
	}

	s.writeRecord(ctx, repository.RecordInput{
		Email:    gateEmail(gate),
		UserID:   userID,
		Category: repository.CategoryAICopy,
		Content:  topic,
		Source:   source,
		AINote:   result.Text,
	})

	s.replyText(ctx, replyToken, userID, result.Text)
	return &ChatOutcome{OK: true, Answer: result.Text, LatencyMS: result.LatencyMS}
}

// deliverResults sends entries as a card list, falling back to a text
// digest (with a show-all quick reply when entries were held back) if the
// card reply is rejected.
func (s *ChatService) deliverResults(ctx context.Context, replyToken, userID, label string, entries []*domain.KnowledgeEntry, showN int, showAllText string) {
	if s.transport == nil || replyToken == "" {
		return
	}

	flex := line.NewFlexCarousel(label, BuildCarouselEntries(label, entries))
	if err := s.transport.Reply(ctx, replyToken, flex); err == nil {
		return
	}

	digest := BuildDigest(label, entries, showN)
	var msg line.Message
	if digest.MoreCount > 0 {
		msg = line.NewTextMessageWithQuickReplies(digest.Text, []line.QuickItem{
			{Label: "顯示全部", Text: showAllText},
		})
	} else {
		msg = line.NewTextMessage(digest.Text)
	}
	s.deliver(ctx, replyToken, userID, msg)
}

func (s *ChatService) replyText(ctx context.Context, replyToken, userID, text string) {
	if s.transport == nil || replyToken == "" {
		return
	}
	s.deliver(ctx, replyToken, userID, line.NewTextMessage(text))
}

// deliver tries the use-once reply token first and falls back to a push.
func (s *ChatService) deliver(ctx context.Context, replyToken, userID string, msg line.Message) {
	err := s.transport.Reply(ctx, replyToken, msg)
	if err == nil {
		return
	}
	log.Printf("chat: reply failed, falling back to push: %v", err)
	if userID == "" {
		return
	}
	if err := s.transport.Push(ctx, userID, msg); err != nil {
		log.Printf("chat: push fallback failed: %v", err)
	}
}

// writeRecord appends an audit row. Failures are logged, never surfaced:
// the side channel must not block the primary response.
func (s *ChatService) writeRecord(ctx context.Context, input repository.RecordInput) string {
	if s.records == nil {
		return ""
	}
	id, err := s.records.Create(ctx, input)
	if err != nil {
		log.Printf("chat: record write failed: %v", err)
		return ""
	}
	return id
}

// augmentRecord backfills the first result's segment and key point onto the
// audit row. Same fire-and-forget policy as writeRecord.
func (s *ChatService) augmentRecord(ctx context.Context, recID string, first *domain.KnowledgeEntry) {
	if s.records == nil || recID == "" || first == nil {
		return
	}
	if err := s.records.Augment(ctx, recID, first.MappedSegment, first.PrimaryAnswer); err != nil {
		log.Printf("chat: record augment failed: %v", err)
	}
}

func gateEmail(gate GateResult) string {
	if gate.Member == nil {
		return ""
	}
	return gate.Member.Email
}

func helpText() string {
	return strings.Join([]string{
		"可用指令：",
		"• 綁定 your@email.com",
		"• 狀態 / 我的狀態",
		"• 簽到 [內容]",
		"• 心得 你的心得……",
		"• 主題 基礎理論（或直接輸入：基礎理論）",
		"• 顯示全部 主題 基礎理論",
		"• 文案 你的主題（AI 產文）",
		"• 直接輸入症狀關鍵字（例：肩頸、頭暈、胸悶）",
	}, "\n")
}

func shortID(id string) string {
	s := strings.ReplaceAll(id, "-", "")
	if len(s) > 8 {
		s = s[:8]
	}
	return s
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
