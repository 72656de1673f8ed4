package services

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"salonBack/internal/fsm"
	"salonBack/internal/line"
	"salonBack/internal/models"
)

// ---- fakes ----

type memUserStore struct {
	users      map[string]*models.LineUser
	nextID     int
	failCreate bool
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.LineUser), nextID: 1}
}

func (m *memUserStore) byID(id int) *models.LineUser {
	for _, u := range m.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (m *memUserStore) GetByLineID(_ context.Context, lineUserID string) (models.LineUser, error) {
	if u, ok := m.users[lineUserID]; ok {
		return *u, nil
	}
	return models.LineUser{}, models.ErrUserNotFound
}

func (m *memUserStore) Create(_ context.Context, u models.LineUser) (models.LineUser, error) {
	if m.failCreate {
		return models.LineUser{}, errors.New("store unavailable")
	}
	u.ID = m.nextID
	m.nextID++
	m.users[u.LineUserID] = &u
	return u, nil
}

func (m *memUserStore) TouchInteraction(_ context.Context, id int, at time.Time) error {
	if u := m.byID(id); u != nil {
		u.LastInteractionAt = at
	}
	return nil
}

func (m *memUserStore) UpdateFollowStatus(_ context.Context, id int, status string) error {
	if u := m.byID(id); u != nil {
		u.FollowStatus = status
	}
	return nil
}

func (m *memUserStore) UpdateProfile(_ context.Context, id int, name, pic, status string) error {
	if u := m.byID(id); u != nil {
		u.DisplayName, u.PictureURL, u.StatusMessage = name, pic, status
	}
	return nil
}

func (m *memUserStore) SetConversationState(_ context.Context, id int, fromState, toState string) error {
	u := m.byID(id)
	if u == nil || u.ConversationState != fromState || !fsm.CanTransition(fromState, toState) {
		return models.ErrStateConflict
	}
	u.ConversationState = toState
	return nil
}

func (m *memUserStore) MarkInterested(_ context.Context, id int, at time.Time) error {
	if u := m.byID(id); u != nil && u.InterestedAt == nil {
		t := at
		u.InterestedAt = &t
	}
	return nil
}

func (m *memUserStore) RecordPaymentPending(_ context.Context, id int, last5 string) error {
	u := m.byID(id)
	if u == nil || u.ConversationState != fsm.StateAwaitingLast5Digits {
		return models.ErrStateConflict
	}
	u.PaymentStatus = models.PaymentStatusPending
	u.PaymentLast5 = last5
	u.ConversationState = fsm.StateNone
	return nil
}

type sentBatch struct {
	to   string // reply token or line user id
	msgs []line.Message
}

type fakeSender struct {
	replies  []sentBatch
	pushes   []sentBatch
	pushErrs map[string]error // keyed by destination
}

func (f *fakeSender) Reply(_ context.Context, replyToken string, msgs ...line.Message) error {
	f.replies = append(f.replies, sentBatch{to: replyToken, msgs: msgs})
	return nil
}

func (f *fakeSender) Push(_ context.Context, to string, msgs ...line.Message) error {
	if err := f.pushErrs[to]; err != nil {
		return err
	}
	f.pushes = append(f.pushes, sentBatch{to: to, msgs: msgs})
	return nil
}

type fakeProfiles struct{ profile line.Profile }

func (f fakeProfiles) GetProfile(_ context.Context, _ string) (line.Profile, error) {
	return f.profile, nil
}

type fakeSettings struct{ s models.BotSettings }

func (f fakeSettings) Get(_ context.Context) (models.BotSettings, error) { return f.s, nil }

func discardLog() *log.Logger { return log.New(io.Discard, "", 0) }

func testSettings() models.BotSettings {
	return models.BotSettings{
		EventName:      "美甲課程",
		Price:          "NT$ 3,600",
		BankInfo:       "004 123-456-789012",
		WelcomeMessage: "歡迎加入！",
	}
}

func newConversationService(store *memUserStore, sender *fakeSender, now func() time.Time) *ConversationService {
	return &ConversationService{
		Users:    store,
		Sender:   sender,
		Profiles: fakeProfiles{profile: line.Profile{DisplayName: "小美"}},
		Settings: fakeSettings{s: testSettings()},
		InfoLog:  discardLog(),
		ErrorLog: discardLog(),
		Now:      now,
	}
}

func textEvent(userID, text string) line.Event {
	return line.Event{
		Type:       line.EventTypeMessage,
		ReplyToken: "rt-" + text,
		Source:     line.EventSource{Type: "user", UserID: userID},
		Message:    line.EventMessage{ID: "m1", Type: line.MessageTypeText, Text: text},
	}
}

func lastReplyText(t *testing.T, sender *fakeSender) string {
	t.Helper()
	if len(sender.replies) == 0 {
		t.Fatal("expected at least one reply")
	}
	batch := sender.replies[len(sender.replies)-1]
	text, ok := batch.msgs[0].(line.TextMessage)
	if !ok {
		t.Fatalf("expected first message to be text, got %T", batch.msgs[0])
	}
	return text.Text
}

// ---- tests ----

func TestRegistrationFunnelHappyPath(t *testing.T) {
	store := newMemUserStore()
	sender := &fakeSender{}
	svc := newConversationService(store, sender, func() time.Time {
		return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	})
	ctx := context.Background()

	svc.HandleEvents(ctx, []line.Event{textEvent("U1", "報名")})
	u := store.users["U1"]
	if u == nil {
		t.Fatal("expected user to be created on first contact")
	}
	if u.ConversationState != fsm.StateRegistrationStarted {
		t.Fatalf("expected registration_started, got %q", u.ConversationState)
	}
	if u.InterestedAt == nil {
		t.Fatal("expected interested_at to be stamped")
	}
	if u.DisplayName != "小美" {
		t.Fatalf("expected profile snapshot on create, got %q", u.DisplayName)
	}

	svc.HandleEvents(ctx, []line.Event{textEvent("U1", "複製匯款資訊")})
	if u.ConversationState != fsm.StateAwaitingPayment {
		t.Fatalf("expected awaiting_payment, got %q", u.ConversationState)
	}

	svc.HandleEvents(ctx, []line.Event{textEvent("U1", "已完成匯款")})
	if u.ConversationState != fsm.StateAwaitingLast5Digits {
		t.Fatalf("expected awaiting_last_5_digits, got %q", u.ConversationState)
	}

	svc.HandleEvents(ctx, []line.Event{textEvent("U1", "12345")})
	if u.ConversationState != fsm.StateNone {
		t.Fatalf("expected funnel to close, got %q", u.ConversationState)
	}
	if u.PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("expected payment pending, got %q", u.PaymentStatus)
	}
	if u.PaymentLast5 != "12345" {
		t.Fatalf("expected last5 12345, got %q", u.PaymentLast5)
	}
	if got := lastReplyText(t, sender); got != textPaymentRecorded {
		t.Fatalf("unexpected final reply %q", got)
	}
}

func TestInterestedAtIsWriteOnce(t *testing.T) {
	store := newMemUserStore()
	sender := &fakeSender{}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newConversationService(store, sender, func() time.Time { return now })
	ctx := context.Background()

	svc.HandleEvents(ctx, []line.Event{textEvent("U1", "報名")})
	first := *store.users["U1"].InterestedAt

	now = now.Add(48 * time.Hour)
	svc.HandleEvents(ctx, []line.Event{textEvent("U1", "報名")})
	if got := *store.users["U1"].InterestedAt; !got.Equal(first) {
		t.Fatalf("interested_at moved from %v to %v on repeated 報名", first, got)
	}
}

func TestMalformedLast5KeepsState(t *testing.T) {
	store := newMemUserStore()
	sender := &fakeSender{}
	svc := newConversationService(store, sender, nil)
	ctx := context.Background()

	svc.HandleEvents(ctx, []line.Event{
		textEvent("U1", "報名"),
		textEvent("U1", "已完成匯款"),
	})
	u := store.users["U1"]
	if u.ConversationState != fsm.StateAwaitingLast5Digits {
		t.Fatalf("setup failed, state %q", u.ConversationState)
	}

	for _, bad := range []string{"abc", "123456", "1234"} {
		svc.HandleEvents(ctx, []line.Event{textEvent("U1", bad)})
		if u.ConversationState != fsm.StateAwaitingLast5Digits {
			t.Fatalf("state left awaiting_last_5_digits on input %q: %q", bad, u.ConversationState)
		}
		if u.PaymentStatus != models.PaymentStatusUnpaid {
			t.Fatalf("payment status mutated on input %q: %q", bad, u.PaymentStatus)
		}
		if got := lastReplyText(t, sender); got != textLast5Format {
			t.Fatalf("expected format-error reply on %q, got %q", bad, got)
		}
	}
}

func TestUnknownTextIsEchoed(t *testing.T) {
	store := newMemUserStore()
	sender := &fakeSender{}
	svc := newConversationService(store, sender, nil)

	svc.HandleEvents(context.Background(), []line.Event{textEvent("U1", "營業時間？")})
	if got := lastReplyText(t, sender); got != "營業時間？" {
		t.Fatalf("expected echo, got %q", got)
	}
	if store.users["U1"].ConversationState != fsm.StateNone {
		t.Fatal("echo must not move the funnel state")
	}
}

func TestFollowAndUnfollow(t *testing.T) {
	store := newMemUserStore()
	sender := &fakeSender{}
	svc := newConversationService(store, sender, nil)
	ctx := context.Background()

	svc.HandleEvents(ctx, []line.Event{{
		Type:       line.EventTypeFollow,
		ReplyToken: "rt-follow",
		Source:     line.EventSource{Type: "user", UserID: "U2"},
	}})
	u := store.users["U2"]
	if u == nil || u.FollowStatus != models.FollowStatusFollowing {
		t.Fatal("expected follower record after follow event")
	}
	if got := lastReplyText(t, sender); got != "歡迎加入！" {
		t.Fatalf("expected welcome reply, got %q", got)
	}

	replies := len(sender.replies)
	svc.HandleEvents(ctx, []line.Event{{
		Type:   line.EventTypeUnfollow,
		Source: line.EventSource{Type: "user", UserID: "U2"},
	}})
	if u.FollowStatus != models.FollowStatusUnfollowed {
		t.Fatalf("expected unfollowed, got %q", u.FollowStatus)
	}
	if len(sender.replies) != replies {
		t.Fatal("unfollow must not send a reply")
	}
}

func TestNonTextMessagesAreIgnored(t *testing.T) {
	store := newMemUserStore()
	sender := &fakeSender{}
	svc := newConversationService(store, sender, nil)

	svc.HandleEvents(context.Background(), []line.Event{{
		Type:       line.EventTypeMessage,
		ReplyToken: "rt-sticker",
		Source:     line.EventSource{Type: "user", UserID: "U1"},
		Message:    line.EventMessage{ID: "m1", Type: "sticker"},
	}})
	if len(sender.replies) != 0 {
		t.Fatal("sticker message must not produce a reply")
	}
}

func TestCreateFailureSkipsEventOnly(t *testing.T) {
	store := newMemUserStore()
	store.failCreate = true
	sender := &fakeSender{}
	svc := newConversationService(store, sender, nil)

	svc.HandleEvents(context.Background(), []line.Event{textEvent("U9", "報名")})
	if len(sender.replies) != 0 {
		t.Fatal("no reply expected when the user record cannot be created")
	}

	store.failCreate = false
	svc.HandleEvents(context.Background(), []line.Event{textEvent("U9", "hello")})
	if got := lastReplyText(t, sender); got != "hello" {
		t.Fatalf("expected echo after store recovered, got %q", got)
	}
}
