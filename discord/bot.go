// Package discord connects the pipeline to Discord: it listens for guild
// messages containing supported video links, runs a pipeline per link, and
// delivers outcomes as replies and reactions on the originating message.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/driftline/reelpost/pipeline"
	"github.com/driftline/reelpost/platform"
)

// Bot owns the Discord session and dispatches pipeline runs.
type Bot struct {
	session *discordgo.Session
	pipe    *pipeline.Pipeline
	runs    sync.WaitGroup
}

// New creates a Bot with the gateway intents needed to read guild messages.
func New(token string, pipe *pipeline.Pipeline) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	return &Bot{session: session, pipe: pipe}, nil
}

// Start opens the gateway connection and blocks until ctx is canceled, then
// waits for in-flight pipeline runs to finish so each one can delete the
// asset it owns before the process exits.
func (b *Bot) Start(ctx context.Context) error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessageCreate(ctx, s, m)
	})
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord connect: %w", err)
	}
	<-ctx.Done()
	if err := b.session.Close(); err != nil {
		slog.Error("discord close error", slog.Any("err", err))
	}
	b.runs.Wait()
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("discord connected",
		slog.String("user", r.User.Username),
		slog.Int("guilds", len(r.Guilds)))
}

func (b *Bot) onMessageCreate(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if !shouldProcess(s.State.User.ID, m) {
		return
	}
	links := platform.ExtractLinks(m.Content)
	if len(links) == 0 {
		return
	}
	slog.Info("processing video links",
		slog.Int("count", len(links)),
		slog.String("guild_id", m.GuildID),
		slog.String("channel_id", m.ChannelID))

	// One pipeline run per link; runs own disjoint temp files, so they can
	// proceed concurrently without coordination.
	for _, link := range links {
		link := link
		b.track(func() {
			notifier := &messageNotifier{session: s, msg: m.Message}
			marker := &reactionMarker{session: s, msg: m.Message}
			b.pipe.Run(ctx, pipeline.Request{URL: link.URL, Platform: link.Platform}, notifier, marker)
		})
	}
}

// track runs fn on its own goroutine and registers it with the waitgroup
// Start drains on shutdown.
func (b *Bot) track(fn func()) {
	b.runs.Add(1)
	go func() {
		defer b.runs.Done()
		fn()
	}()
}

// shouldProcess filters out the bot's own messages (loop protection), other
// bots, and DMs.
func shouldProcess(botUserID string, m *discordgo.MessageCreate) bool {
	if m.Author == nil || m.Author.ID == botUserID || m.Author.Bot {
		return false
	}
	if m.GuildID == "" {
		return false
	}
	return true
}
