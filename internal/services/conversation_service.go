package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"salonBack/internal/fsm"
	"salonBack/internal/line"
	"salonBack/internal/models"
)

// Keywords the funnel matches on. Exact match after trimming, no fuzzy logic:
// the bot drives a single narrow registration flow and the buttons it sends
// echo these exact texts back.
const (
	KeywordRegister     = "報名"
	KeywordCopyBankInfo = "複製匯款資訊"
	KeywordPaymentDone  = "已完成匯款"
)

const (
	textAskLast5        = "請輸入您匯款帳號的後五碼（5 位數字）"
	textPaymentRecorded = "已收到您的匯款後五碼，我們將盡快為您確認，謝謝您的報名！"
	textLast5Format     = "格式不正確，請輸入匯款帳號後五碼（5 位數字）"
	textPressWhenPaid   = "完成匯款後，請點選下方按鈕"
	textPressToCopy     = "請點選下方按鈕取得匯款資訊"
)

var last5Pattern = regexp.MustCompile(`^\d{5}$`)

// ConversationUserStore is the user-record store the engine mutates.
type ConversationUserStore interface {
	GetByLineID(ctx context.Context, lineUserID string) (models.LineUser, error)
	Create(ctx context.Context, u models.LineUser) (models.LineUser, error)
	TouchInteraction(ctx context.Context, id int, at time.Time) error
	UpdateFollowStatus(ctx context.Context, id int, status string) error
	UpdateProfile(ctx context.Context, id int, displayName, pictureURL, statusMessage string) error
	SetConversationState(ctx context.Context, id int, fromState, toState string) error
	MarkInterested(ctx context.Context, id int, at time.Time) error
	RecordPaymentPending(ctx context.Context, id int, last5 string) error
}

// MessageSender is the outbound push/reply capability.
type MessageSender interface {
	Reply(ctx context.Context, replyToken string, msgs ...line.Message) error
	Push(ctx context.Context, to string, msgs ...line.Message) error
}

// ProfileFetcher fetches a platform profile snapshot for first contact.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, userID string) (line.Profile, error)
}

// SettingsProvider supplies the admin-editable bot texts.
type SettingsProvider interface {
	Get(ctx context.Context) (models.BotSettings, error)
}

// EventFeed receives normalized inbound events for the admin live feed.
type EventFeed interface {
	Publish(ev models.InboundEvent)
}

// ConversationService turns inbound LINE events into state transitions and
// replies.
type ConversationService struct {
	Users    ConversationUserStore
	Sender   MessageSender
	Profiles ProfileFetcher
	Settings SettingsProvider
	Feed     EventFeed // optional
	InfoLog  *log.Logger
	ErrorLog *log.Logger
	Now      func() time.Time
}

func (s *ConversationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// HandleEvents processes a webhook batch. Each event is isolated: a failure
// in one never aborts the others.
func (s *ConversationService) HandleEvents(ctx context.Context, events []line.Event) {
	for _, ev := range events {
		if err := s.handleEvent(ctx, ev); err != nil {
			s.ErrorLog.Printf("line event %s for user %s: %v", ev.Type, ev.Source.UserID, err)
		}
	}
}

func (s *ConversationService) handleEvent(ctx context.Context, ev line.Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while handling event: %v", p)
		}
	}()

	if ev.Source.UserID == "" {
		return nil
	}

	u, err := s.resolveUser(ctx, ev.Source.UserID)
	if err != nil {
		return err
	}
	if err := s.Users.TouchInteraction(ctx, u.ID, s.now()); err != nil {
		s.ErrorLog.Printf("touch interaction for %s: %v", u.LineUserID, err)
	}

	switch ev.Type {
	case line.EventTypeFollow:
		if err := s.Users.UpdateFollowStatus(ctx, u.ID, models.FollowStatusFollowing); err != nil {
			return err
		}
		settings, err := s.Settings.Get(ctx)
		if err != nil {
			return err
		}
		s.reply(ctx, ev.ReplyToken, line.NewText(settings.WelcomeMessage))
		return nil

	case line.EventTypeUnfollow:
		// the channel is gone, nothing to send
		return s.Users.UpdateFollowStatus(ctx, u.ID, models.FollowStatusUnfollowed)

	case line.EventTypeMessage:
		if ev.Message.Type != line.MessageTypeText {
			return nil
		}
		text := strings.TrimSpace(ev.Message.Text)
		s.publish(u, ev.Type, text)
		return s.handleText(ctx, u, text, ev.ReplyToken)

	case line.EventTypePostback:
		// reserved for future use
		s.InfoLog.Printf("postback from %s: %s", u.LineUserID, ev.Postback.Data)
		return nil
	}

	return nil
}

// resolveUser loads the record for the platform identity, creating it from a
// profile snapshot on first contact.
func (s *ConversationService) resolveUser(ctx context.Context, lineUserID string) (models.LineUser, error) {
	u, err := s.Users.GetByLineID(ctx, lineUserID)
	if err == nil {
		return u, nil
	}
	if err != models.ErrUserNotFound {
		return models.LineUser{}, err
	}

	newUser := models.LineUser{
		LineUserID:        lineUserID,
		FollowStatus:      models.FollowStatusFollowing,
		PaymentStatus:     models.PaymentStatusUnpaid,
		LastInteractionAt: s.now(),
	}
	if profile, perr := s.Profiles.GetProfile(ctx, lineUserID); perr != nil {
		s.ErrorLog.Printf("profile fetch for %s: %v", lineUserID, perr)
	} else {
		newUser.DisplayName = profile.DisplayName
		newUser.PictureURL = profile.PictureURL
		newUser.StatusMessage = profile.StatusMessage
	}
	return s.Users.Create(ctx, newUser)
}

func (s *ConversationService) handleText(ctx context.Context, u models.LineUser, text, replyToken string) error {
	switch {
	case text == KeywordRegister:
		// interested_at is write-once: a second 報名 keeps the original
		// remarketing clock
		if err := s.Users.MarkInterested(ctx, u.ID, s.now()); err != nil {
			return err
		}
		if err := s.Users.SetConversationState(ctx, u.ID, u.ConversationState, fsm.StateRegistrationStarted); err != nil {
			return err
		}
		settings, err := s.Settings.Get(ctx)
		if err != nil {
			return err
		}
		info := fmt.Sprintf("【%s】\n費用：%s\n\n匯款資訊：\n%s", settings.EventName, settings.Price, settings.BankInfo)
		s.reply(ctx, replyToken,
			line.NewText(info),
			line.NewButtons("報名資訊", textPressToCopy, line.NewMessageAction(KeywordCopyBankInfo, KeywordCopyBankInfo)),
		)
		return nil

	case u.ConversationState == fsm.StateRegistrationStarted && text == KeywordCopyBankInfo:
		if err := s.Users.SetConversationState(ctx, u.ID, u.ConversationState, fsm.StateAwaitingPayment); err != nil {
			return err
		}
		settings, err := s.Settings.Get(ctx)
		if err != nil {
			return err
		}
		s.reply(ctx, replyToken,
			line.NewText(settings.BankInfo),
			line.NewButtons("匯款確認", textPressWhenPaid, line.NewMessageAction(KeywordPaymentDone, KeywordPaymentDone)),
		)
		return nil

	case (u.ConversationState == fsm.StateRegistrationStarted || u.ConversationState == fsm.StateAwaitingPayment) &&
		text == KeywordPaymentDone:
		if err := s.Users.SetConversationState(ctx, u.ID, u.ConversationState, fsm.StateAwaitingLast5Digits); err != nil {
			return err
		}
		s.reply(ctx, replyToken, line.NewText(textAskLast5))
		return nil

	case u.ConversationState == fsm.StateAwaitingLast5Digits:
		if !last5Pattern.MatchString(text) {
			// stay in the same state, ask again
			s.reply(ctx, replyToken, line.NewText(textLast5Format))
			return nil
		}
		if err := s.Users.RecordPaymentPending(ctx, u.ID, text); err != nil {
			return err
		}
		s.reply(ctx, replyToken, line.NewText(textPaymentRecorded))
		return nil

	default:
		// echo fallback doubles as a liveness signal
		s.reply(ctx, replyToken, line.NewText(text))
		return nil
	}
}

// reply sends and logs failures without failing the event: the platform only
// needs the webhook to answer 200 promptly.
func (s *ConversationService) reply(ctx context.Context, replyToken string, msgs ...line.Message) {
	if replyToken == "" {
		return
	}
	if err := s.Sender.Reply(ctx, replyToken, msgs...); err != nil {
		s.ErrorLog.Printf("line reply failed: %v", err)
	}
}

func (s *ConversationService) publish(u models.LineUser, eventType, text string) {
	if s.Feed == nil {
		return
	}
	s.Feed.Publish(models.InboundEvent{
		LineUserID:  u.LineUserID,
		DisplayName: u.DisplayName,
		EventType:   eventType,
		Text:        text,
		ReceivedAt:  s.now(),
	})
}
