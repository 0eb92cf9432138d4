package store

import (
	"fmt"
	"strings"
	"time"
)

const caseRefPrefix = "LE"

// GenerateCaseRef builds a human-readable case reference from the user seed
// and the current time: prefix, last four of the seed, last four digits of
// the epoch milliseconds, uppercased. Example: LE-9F3A-4821.
func GenerateCaseRef(userSeed string) string {
	return generateCaseRefAt(userSeed, time.Now())
}

func generateCaseRefAt(userSeed string, now time.Time) string {
	seed := userSeed
	if len(seed) > 4 {
		seed = seed[len(seed)-4:]
	}
	millis := fmt.Sprintf("%d", now.UnixMilli())
	if len(millis) > 4 {
		millis = millis[len(millis)-4:]
	}
	return strings.ToUpper(fmt.Sprintf("%s-%s-%s", caseRefPrefix, seed, millis))
}
