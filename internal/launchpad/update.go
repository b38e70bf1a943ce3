// =============================
// File: internal/launchpad/update.go
// =============================
package launchpad

import (
	"github.com/rovshanmuradov/woofpad/internal/events"
)

func (e *Engine) updateConfig(t *tx, msg *ConfigUpdate, resp *Response) error {
	cfg := t.cfg()
	if t.env.Sender != cfg.Owner {
		return newError(KindUnauthorized, "update_config is admin only")
	}
	if msg.Empty() {
		return newError(KindInvalidMessage, "update_config changes nothing")
	}
	next := msg.Apply(cfg)
	if err := next.Validate(); err != nil {
		return wrapError(KindInvalidConfig, err, "update_config")
	}
	t.config = &next

	out := next
	resp.Config = &out
	t.emit(events.ConfigUpdatedEvent{
		BaseEvent: events.NewBase(events.ConfigUpdated, t.env.BlockTime, t.env.BlockHeight),
		Admin:     t.env.Sender,
		Enabled:   next.Enabled,
	})
	return nil
}
