package discord

import (
	"context"
	"io"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/driftline/reelpost/pipeline"
)

// messageNotifier replies to the originating message.
type messageNotifier struct {
	session *discordgo.Session
	msg     *discordgo.Message
}

func (n *messageNotifier) ReplyText(ctx context.Context, text string) error {
	_, err := n.session.ChannelMessageSendReply(n.msg.ChannelID, text, n.msg.Reference())
	return err
}

func (n *messageNotifier) ReplyFile(ctx context.Context, filename string, r io.Reader) error {
	_, err := n.session.ChannelMessageSendComplex(n.msg.ChannelID, &discordgo.MessageSend{
		Files: []*discordgo.File{{
			Name:        filename,
			ContentType: "video/mp4",
			Reader:      r,
		}},
		Reference: n.msg.Reference(),
	})
	return err
}

// reactionMarker shows pipeline progress as reactions. Markers are
// best-effort: a missing Add Reactions permission must never change a run's
// outcome, so errors are logged and dropped.
type reactionMarker struct {
	session *discordgo.Session
	msg     *discordgo.Message
}

func (m *reactionMarker) Mark(ctx context.Context, p pipeline.Phase) {
	if err := m.session.MessageReactionAdd(m.msg.ChannelID, m.msg.ID, emojiFor(p)); err != nil {
		slog.Debug("failed to add reaction",
			slog.String("emoji", emojiFor(p)),
			slog.Any("err", err))
	}
}

func emojiFor(p pipeline.Phase) string {
	switch p {
	case pipeline.PhaseDownloading:
		return "⏬"
	case pipeline.PhaseCompressing:
		return "🔄"
	case pipeline.PhaseSucceeded:
		return "✅"
	default:
		return "❌"
	}
}
