package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHumanSize parses sizes such as "8388608", "512k", "8M" or "1G".
// Suffixes are 1024-based; a trailing "B" or "iB" is accepted.
// Negative values parse successfully so callers can apply their own fallback.
func ParseHumanSize(sizeStr string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(sizeStr))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	}

	// Extract numeric part and suffix
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	numPart, suffix := s[:end], strings.TrimSpace(s[end:])

	if numPart == "" {
		return 0, fmt.Errorf("no numeric part in size string: %s", sizeStr)
	}

	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric part in size string %s: %w", sizeStr, err)
	}

	suffix = strings.TrimSuffix(strings.TrimSuffix(suffix, "B"), "I")

	var multiplier float64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = 1024
	case "M":
		multiplier = 1024 * 1024
	case "G":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size suffix in %s", sizeStr)
	}

	return int(sign * num * multiplier), nil
}

// ByteSize is a pflag.Value accepting human sizes.
type ByteSize int

func (b ByteSize) String() string { return strconv.Itoa(int(b)) }

func (b *ByteSize) Set(s string) error {
	size, err := ParseHumanSize(s)
	if err != nil {
		return err
	}
	*b = ByteSize(size)
	return nil
}

func (b *ByteSize) Type() string { return "size" }
