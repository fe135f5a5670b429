package util

import (
	"fmt"
	"strings"
)

// MaskKey masks a key string by showing only the first and last n characters
func MaskKey(key string, firstN, lastN int) string {
	if key == "" {
		return ""
	}

	runes := []rune(key)
	if len(runes) <= firstN+lastN {
		return strings.Repeat("*", len(runes))
	}

	firstPart := string(runes[:firstN])
	lastPart := string(runes[len(runes)-lastN:])
	maskedPart := strings.Repeat("*", 3)

	return fmt.Sprintf("%s%s%s", firstPart, maskedPart, lastPart)
}
