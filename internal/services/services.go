// Package services holds the business operations of the platform. Every
// entry point that reads or writes a course, lesson, enrollment or completion
// consults the access package before touching the store.
package services

import "time"

// Now is the clock used for every timestamp the services write.
var Now = func() time.Time {
	return time.Now().UTC()
}
