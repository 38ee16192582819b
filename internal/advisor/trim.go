package advisor

import "eu5advisor/pkg/advisortypes"

// Trim drops the oldest whole turn groups until the transcript fits
// MaxHistoryMessages. The persona message and the newest turn group are always kept,
// so a tool-call chain is never split. If the newest turn group alone exceeds the
// limit it is kept anyway. Trim returns the number of dropped messages.
func (c *Controller) Trim() int {
	limit := c.opts.MaxHistoryMessages
	if len(c.transcript) <= limit {
		return 0
	}

	var boundaries []int
	for i, msg := range c.transcript {
		if msg.Role == advisortypes.RoleUser {
			boundaries = append(boundaries, i)
		}
	}
	if len(boundaries) < 2 {
		return 0
	}

	cut := boundaries[len(boundaries)-1]
	for _, b := range boundaries[1:] {
		if 1+len(c.transcript)-b <= limit {
			cut = b
			break
		}
	}

	retained := make([]advisortypes.Message, 0, 1+len(c.transcript)-cut)
	retained = append(retained, c.transcript[0])
	retained = append(retained, c.transcript[cut:]...)

	dropped := len(c.transcript) - len(retained)
	c.transcript = retained

	c.logger.Warn("trimmed old messages to stay within history limit", "dropped", dropped, "limit", limit)
	if c.opts.Observer.OnTrim != nil {
		c.opts.Observer.OnTrim(dropped, limit)
	}
	return dropped
}
