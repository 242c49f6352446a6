package harvest

import (
	"context"
	"time"

	"github.com/jarvest/jarvest/common"
	"github.com/jarvest/jarvest/internal/browser"
)

// DefaultPollInterval is the fixed gap between cookie samples.
const DefaultPollInterval = 500 * time.Millisecond

// PollConfig bounds one polling phase.
type PollConfig struct {
	Interval time.Duration
	Budget   time.Duration
}

func (c PollConfig) interval() time.Duration {
	if c.Interval <= 0 {
		return DefaultPollInterval
	}
	return c.Interval
}

// PollOutcome is the terminal state of one polling phase. Cookies holds
// the last sampled jar whether or not an identity cookie appeared.
type PollOutcome struct {
	Found   bool
	Cookies []common.Cookie
	Samples int
}

// Poll samples the session jar at a fixed interval until an identity
// cookie appears or the budget runs out. The budget always gets a final
// sample on expiry, so a cookie that lands late still counts. Sample
// errors are tolerated; the last good jar is kept.
func Poll(ctx context.Context, sess browser.Session, urls []string, cfg PollConfig) PollOutcome {
	deadline := time.Now().Add(cfg.Budget)
	var out PollOutcome
	for {
		jar, err := sess.Cookies(ctx, urls...)
		out.Samples++
		if err == nil {
			out.Cookies = jar
			if HasIdentity(jar) {
				out.Found = true
				return out
			}
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return out
		}
		wait := cfg.interval()
		if wait > remaining {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return out
		case <-time.After(wait):
		}
	}
}
