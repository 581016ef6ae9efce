package notify

import (
	"log/slog"

	"github.com/MrJamesThe3rd/harvest/internal/collection"
	"github.com/MrJamesThe3rd/harvest/internal/config"
)

// Senders builds the channel table from configuration. Channels without a gateway are left out,
// which the dispatcher treats as a failed channel and falls through.
func Senders(cfg *config.Config, push collection.Sender) map[collection.Channel]collection.Sender {
	region := cfg.Collections.DefaultRegion
	gw := cfg.Gateways

	senders := make(map[collection.Channel]collection.Sender)

	add := func(ch collection.Channel, url, token string) {
		if url == "" {
			slog.Warn("gateway not configured", "module", "notify", "channel", ch)
			return
		}

		senders[ch] = NewHTTPSender(ch, url, token, region)
	}

	add(collection.ChannelChat, gw.ChatURL, gw.ChatToken)
	add(collection.ChannelSMS, gw.SMSURL, gw.SMSToken)
	add(collection.ChannelEmail, gw.EmailURL, gw.EmailToken)
	add(collection.ChannelVoice, gw.VoiceURL, gw.VoiceToken)

	if push != nil {
		senders[collection.ChannelPush] = push
	}

	return senders
}
