package bot

import (
	"fmt"
	"strings"
)

const userIDPrefix = "bot-"

var usernames = []string{"Marek", "Ona", "Vytas"}

// IsBot reports whether the given user id represents a bot seat.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, userIDPrefix)
}

// SeatUserID returns the synthetic user id for a bot filling the given seat.
func SeatUserID(seat int) string {
	return fmt.Sprintf("%s%d", userIDPrefix, seat+1)
}

// Username returns a friendly display name for a bot user id, or "" for
// anything that is not a bot.
func Username(userID string) string {
	if !IsBot(userID) {
		return ""
	}
	var seat int
	if _, err := fmt.Sscanf(userID, userIDPrefix+"%d", &seat); err != nil || seat < 1 {
		return "Bot"
	}
	return usernames[(seat-1)%len(usernames)]
}
