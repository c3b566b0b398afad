package domain

// Limits caps user supplied text, counted in runes.
type Limits struct {
	Name    int
	Role    int
	Content int
	Token   int
}

var DefaultLimits = Limits{
	Name:    48,
	Role:    32,
	Content: 2000,
	Token:   128,
}

// Truncate keeps at most max runes of s. A non positive max disables the cap.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
