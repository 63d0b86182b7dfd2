package tieredpool

import "fmt"

// Tier represents the priority tier a [Task] is submitted to.
type Tier struct {
	tier
}

// ParseTier creates a new [Tier] from the given value.
func ParseTier(t any) Tier {
	switch v := t.(type) {
	case Tier:
		return v
	case string:
		return Tier{stringToTier(v)}
	case fmt.Stringer:
		return Tier{stringToTier(v.String())}
	case int:
		return Tier{tier(v)}
	case int64:
		return Tier{tier(int(v))}
	case int32:
		return Tier{tier(int(v))}
	default:
		return Tier{tierUnknown}
	}
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Tier) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*t = ParseTier(s)
	return nil
}

// Workers returns the number of workers dedicated to the tier. Unknown tiers
// have none.
func (t Tier) Workers() int {
	return tierWorkers[t.tier]
}

// Tiers is a more typical enum like structure from other languages, ported to
// Go. It may be used to reference a [Tier] value by name.
var Tiers = tierContainer{
	Unknown: Tier{tierUnknown},
	Low:     Tier{tierLow},
	Medium:  Tier{tierMedium},
	High:    Tier{tierHigh},
}

// All returns the tiers a [Dispatcher] runs, highest priority first.
func (c tierContainer) All() []Tier {
	return []Tier{c.High, c.Medium, c.Low}
}

type tier int

const (
	tierUnknown tier = 0
	tierLow     tier = 10
	tierMedium  tier = 20
	tierHigh    tier = 30
)

var (
	strTierMap = map[tier]string{
		tierUnknown: "unknown",
		tierLow:     "low",
		tierMedium:  "medium",
		tierHigh:    "high",
	}

	typeTierMap = map[string]tier{
		"unknown": tierUnknown,
		"low":     tierLow,
		"medium":  tierMedium,
		"high":    tierHigh,
	}

	tierWorkers = map[tier]int{
		tierLow:    3,
		tierMedium: 2,
		tierHigh:   1,
	}
)

func (t tier) String() string {
	return strTierMap[t]
}

// IsValid reports whether the tier is one a [Dispatcher] accepts work for.
func (t tier) IsValid() bool {
	_, ok := tierWorkers[t]
	return ok
}

func stringToTier(s string) tier {
	if v, ok := typeTierMap[s]; ok {
		return v
	}
	return tierUnknown
}

type tierContainer struct {
	Unknown Tier
	Low     Tier
	Medium  Tier
	High    Tier
}
