package bot

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/nochlab/nochgpt/internal/errors"
	"github.com/nochlab/nochgpt/internal/i18n"
	"github.com/nochlab/nochgpt/internal/store"
	"github.com/nochlab/nochgpt/internal/wa"
)

func (p *Processor) handleText(ctx context.Context, sender, text string, lang i18n.Lang) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return p.graph.SendText(ctx, sender, i18n.Tr(i18n.KeyFallback, lang))
	}

	state, _, err := p.db.GetState(ctx, sender)
	if err != nil {
		return err
	}

	// A pending handoff consumes the next text message as the ticket body,
	// exactly one ticket per cycle.
	if state == store.StateWaitingHandoff {
		if _, err := p.tickets.CreateFromMessage(ctx, sender, text); err != nil {
			return err
		}
		if err := p.db.SetState(ctx, sender, store.StateDone); err != nil {
			return err
		}
		return p.graph.SendText(ctx, sender, i18n.Tr(i18n.KeyHandoffOK, lang))
	}

	if greetingRe.MatchString(text) {
		return p.sendMenu(ctx, sender, lang)
	}

	if handoffRe.MatchString(text) {
		return p.startHandoff(ctx, sender, lang)
	}

	answer, err := p.Answer(ctx, text, lang)
	if err != nil {
		return err
	}
	return p.graph.SendText(ctx, sender, answer)
}

func (p *Processor) handleInteractive(ctx context.Context, msg *wa.Message, lang i18n.Lang) error {
	switch msg.ActionID() {
	case actionPlans:
		return p.graph.SendText(ctx, msg.From, i18n.Tr(i18n.KeyPlans, lang))
	case actionTimes:
		return p.graph.SendText(ctx, msg.From, i18n.Tr(i18n.KeyTimes, lang))
	case actionHuman:
		return p.startHandoff(ctx, msg.From, lang)
	default:
		return p.graph.SendText(ctx, msg.From, i18n.Tr(i18n.KeySelectionAck, lang))
	}
}

func (p *Processor) handleAudio(ctx context.Context, msg *wa.Message, lang i18n.Lang) error {
	if err := p.graph.SendText(ctx, msg.From, i18n.Tr(i18n.KeyAudioWait, lang)); err != nil {
		return err
	}

	mediaID, _, mime := msg.MediaID()
	transcript, err := p.media.TranscribeAudio(ctx, mediaID, mime)
	if err != nil {
		return err
	}

	// The transcript flows through the normal text path, so a voice note
	// can answer the handoff prompt or ask a question.
	return p.handleText(ctx, msg.From, transcript, lang)
}

func (p *Processor) handleImage(ctx context.Context, msg *wa.Message, lang i18n.Lang) error {
	if err := p.graph.SendText(ctx, msg.From, i18n.Tr(i18n.KeyImageWait, lang)); err != nil {
		return err
	}

	mediaID, _, mime := msg.MediaID()
	summary, err := p.media.DescribeImage(ctx, mediaID, mime, lang)
	if err != nil {
		return err
	}
	return p.graph.SendText(ctx, msg.From, summary)
}

func (p *Processor) handleDocument(ctx context.Context, msg *wa.Message, lang i18n.Lang) error {
	mediaID, _, mime := msg.MediaID()
	summary, err := p.media.SummarizeDocument(ctx, mediaID, mime, lang)
	if errors.Is(err, apperrors.ErrUnsupportedType) {
		return p.graph.SendText(ctx, msg.From, i18n.Tr(i18n.KeyFallback, lang))
	}
	if err != nil {
		return err
	}
	return p.graph.SendText(ctx, msg.From, i18n.Tr(i18n.KeyDocumentAck, lang)+"\n\n"+summary)
}

// sendMenu sends the localized greeting with the three reply buttons.
func (p *Processor) sendMenu(ctx context.Context, sender string, lang i18n.Lang) error {
	buttons := []wa.ReplyButton{
		{ID: actionPlans, Title: i18n.Tr(i18n.KeyButtonPlans, lang)},
		{ID: actionTimes, Title: i18n.Tr(i18n.KeyButtonTimes, lang)},
		{ID: actionHuman, Title: i18n.Tr(i18n.KeyButtonHuman, lang)},
	}
	return p.graph.SendButtons(ctx, sender, i18n.Tr(i18n.KeyGreeting, lang), buttons)
}

// startHandoff arms the ticket flow: the sender's next text message is
// recorded for the front desk.
func (p *Processor) startHandoff(ctx context.Context, sender string, lang i18n.Lang) error {
	if err := p.db.SetState(ctx, sender, store.StateWaitingHandoff); err != nil {
		return err
	}
	return p.graph.SendText(ctx, sender, i18n.Tr(i18n.KeyHandoffPrompt, lang))
}
