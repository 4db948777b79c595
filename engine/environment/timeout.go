package environment

import (
	"fmt"
	"strconv"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

// Unlimited is the literal timeout value for environments whose cached data
// never expires.
const Unlimited = "unlimited"

// Timeout is a resolved environment cache lifetime: a number of seconds or
// the unlimited sentinel. It is a value consumed by the environment cache,
// not a deadline on resolution itself.
type Timeout struct {
	Duration  time.Duration
	Unlimited bool
}

// Seconds returns the timeout in whole seconds. It is zero when unlimited.
func (t Timeout) Seconds() int64 {
	return int64(t.Duration / time.Second)
}

func (t Timeout) String() string {
	if t.Unlimited {
		return Unlimited
	}
	return strconv.FormatInt(t.Seconds(), 10)
}

// ParseTimeout normalizes a raw timeout setting. It accepts bare integers
// (seconds), suffixed duration strings such as "4s" or "3m", and the literal
// "unlimited". Anything else is an operator error and fails resolution.
func ParseTimeout(raw string, setting string) (Timeout, error) {
	if raw == Unlimited {
		return Timeout{Unlimited: true}, nil
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if secs < 0 {
			return Timeout{}, fmt.Errorf("invalid duration %q for setting %s: must not be negative", raw, setting)
		}
		return Timeout{Duration: time.Duration(secs) * time.Second}, nil
	}
	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		return Timeout{}, fmt.Errorf("invalid duration %q for setting %s: %w", raw, setting, err)
	}
	if d < 0 {
		return Timeout{}, fmt.Errorf("invalid duration %q for setting %s: must not be negative", raw, setting)
	}
	return Timeout{Duration: d}, nil
}
