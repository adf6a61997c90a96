package domain

import "math"

// Rating summarizes approved reviews. Average is 0 when Count is 0.
type Rating struct {
	Count   int
	Average float64
}

// ComputeRating aggregates the approved reviews in reviews; other statuses are ignored.
// The average is rounded to one decimal place.
func ComputeRating(reviews []*Review) Rating {
	var count, sum int
	for _, r := range reviews {
		if r.Status != ReviewApproved {
			continue
		}
		count++
		sum += r.Rating
	}
	if count == 0 {
		return Rating{}
	}

	avg := float64(sum) / float64(count)
	return Rating{Count: count, Average: math.Round(avg*10) / 10}
}
