package ideas

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatMMSS renders whole seconds as zero-padded minutes:seconds. Minutes
// are not wrapped into hours, so 3725 renders as "62:05".
func FormatMMSS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ParseMMSS is the inverse of FormatMMSS.
func ParseMMSS(s string) (int, error) {
	mm, ss, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("parse %q: expected MM:SS", s)
	}
	if len(mm) < 2 || len(ss) != 2 {
		return 0, fmt.Errorf("parse %q: expected zero-padded MM:SS", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("parse %q: bad minutes", s)
	}
	sec, err := strconv.Atoi(ss)
	if err != nil || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("parse %q: bad seconds", s)
	}
	return m*60 + sec, nil
}
