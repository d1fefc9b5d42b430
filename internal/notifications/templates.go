package notifications

import (
	"fmt"
	"strings"
)

const appName = "eWait"

// Render builds the SMS body for n. appURL is used by the no-show rejoin link.
func Render(n Notification, appURL string) (string, error) {
	switch n.Kind {
	case KindJoined:
		position := n.Position
		if position <= 0 {
			position = 1
		}
		return fmt.Sprintf("%s: You're #%d in %s. Position: %d. We'll notify you when it's your turn!",
			appName, n.TicketNumber, orDefault(n.QueueName, "the queue"), position), nil
	case KindAlmostTurn:
		ahead := n.PeopleAhead
		if ahead <= 0 {
			ahead = 1
		}
		return fmt.Sprintf("%s: Heads up! You're #%d and there are only %d people ahead. Please be ready!",
			appName, n.TicketNumber, ahead), nil
	case KindYourTurn:
		return fmt.Sprintf("%s: IT'S YOUR TURN! Ticket #%d. Please proceed to %s now.",
			appName, n.TicketNumber, orDefault(n.LocationName, "the counter")), nil
	case KindNoShow:
		return fmt.Sprintf("%s: Ticket #%d was marked as no-show. Visit %s/join to rejoin.",
			appName, n.TicketNumber, strings.TrimRight(appURL, "/")), nil
	default:
		return "", fmt.Errorf("unknown notification kind %q", n.Kind)
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
