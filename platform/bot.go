// Package platform connects the gateway to the rest of the process: it
// owns the disgo client, translates gateway events into cache and
// engine calls, and serves the slash commands.
package platform

import (
	"context"
	"os"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	discache "github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"

	"github.com/varmanaa/seed/cache"
	"github.com/varmanaa/seed/db"
	"github.com/varmanaa/seed/leaderboard"
	"github.com/varmanaa/seed/leveling"
	"github.com/varmanaa/seed/logger/dlog"
)

type Bot struct {
	Cache  *cache.Cache
	DB     *db.Client
	Board  *leaderboard.Board
	Engine *leveling.Engine

	client bot.Client
}

// New assembles the bot around its collaborators. The board may be nil
// when no Redis instance is configured.
func New(c *cache.Cache, store *db.Client, board *leaderboard.Board) *Bot {
	return &Bot{
		Cache: c,
		DB:    store,
		Board: board,
	}
}

// Setup builds the disgo client, wires the event listeners, and opens
// the gateway.
func (b *Bot) Setup() error {
	client, err := disgo.New(os.Getenv("TOKEN"),
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMembers,
				gateway.IntentGuildMessages,
				gateway.IntentGuildVoiceStates,
			),
		),
		bot.WithCacheConfigOpts(
			discache.WithCaches(discache.FlagsAll),
		),

		bot.WithEventListenerFunc(b.onReady),
		bot.WithEventListenerFunc(b.onGuildReady),
		bot.WithEventListenerFunc(b.onGuildJoin),
		bot.WithEventListenerFunc(b.onGuildUpdate),
		bot.WithEventListenerFunc(b.onGuildLeave),
		bot.WithEventListenerFunc(b.onGuildUnavailable),
		bot.WithEventListenerFunc(b.onChannelCreate),
		bot.WithEventListenerFunc(b.onChannelDelete),
		bot.WithEventListenerFunc(b.onMemberJoin),
		bot.WithEventListenerFunc(b.onMemberLeave),
		bot.WithEventListenerFunc(b.onMemberUpdate),
		bot.WithEventListenerFunc(b.onRoleDelete),
		bot.WithEventListenerFunc(b.onCommand),

		bot.WithEventListenerFunc(func(e *events.GuildMessageCreate) {
			go b.onMessageCreate(e)
		}),
		bot.WithEventListenerFunc(b.onVoiceStateUpdate),
	)
	if err != nil {
		return err
	}
	b.client = client

	var board leveling.Board
	if b.Board != nil {
		board = b.Board
	}
	b.Engine = leveling.New(b.Cache, b.DB, &restRolePatcher{rest: client.Rest()}, board)

	if err = client.OpenGateway(context.TODO()); err != nil {
		return err
	}
	dlog.Info("gateway opened")
	return nil
}

func (b *Bot) Client() bot.Client {
	return b.client
}

func (b *Bot) Close() {
	if b.client != nil {
		b.client.Close(context.TODO())
	}
	dlog.Info("disgo close successfully")
}
