package clock

import "time"

// Clock abstracts time.Now so schedulers and services can be tested with a
// controlled clock.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
