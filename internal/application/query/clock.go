package query

import (
	"time"

	"github.com/respira-app/respira-server/pkg/timeutil"
)

// nowFunc lets tests pin the clock.
type nowFunc func() time.Time

func defaultNow() time.Time {
	return timeutil.Now()
}
