package discord

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/driftline/reelpost/pipeline"
)

func msg(authorID string, bot bool, guildID string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		Author:  &discordgo.User{ID: authorID, Bot: bot},
		GuildID: guildID,
	}}
}

func TestShouldProcess(t *testing.T) {
	const botID = "bot-1"
	cases := []struct {
		name string
		m    *discordgo.MessageCreate
		want bool
	}{
		{"normal guild message", msg("user-1", false, "guild-1"), true},
		{"own message", msg(botID, false, "guild-1"), false},
		{"other bot", msg("bot-2", true, "guild-1"), false},
		{"direct message", msg("user-1", false, ""), false},
		{"nil author", &discordgo.MessageCreate{Message: &discordgo.Message{GuildID: "g"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldProcess(botID, tc.m); got != tc.want {
				t.Errorf("shouldProcess = %v, want %v", got, tc.want)
			}
		})
	}
}

// Shutdown must not abandon in-flight runs: each one still has an asset to
// delete, so Start drains the waitgroup before returning.
func TestShutdownWaitsForTrackedRuns(t *testing.T) {
	b := &Bot{}
	gate := make(chan struct{})
	var completed atomic.Int32
	for i := 0; i < 3; i++ {
		b.track(func() {
			<-gate
			completed.Add(1)
		})
	}

	waited := make(chan struct{})
	go func() {
		b.runs.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("wait returned while runs were still in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(gate)
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("wait did not return after runs finished")
	}
	if got := completed.Load(); got != 3 {
		t.Errorf("completed runs = %d, want 3", got)
	}
}

func TestEmojiFor(t *testing.T) {
	cases := map[pipeline.Phase]string{
		pipeline.PhaseDownloading: "⏬",
		pipeline.PhaseCompressing: "🔄",
		pipeline.PhaseSucceeded:   "✅",
		pipeline.PhaseFailed:      "❌",
	}
	for phase, want := range cases {
		if got := emojiFor(phase); got != want {
			t.Errorf("emojiFor(%v) = %q, want %q", phase, got, want)
		}
	}
}
