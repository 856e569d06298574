// Package itinerary turns trip preferences into a generated travel plan.
package itinerary

import (
	"fmt"
	"strings"

	"travel-review-service/internal/apperror"
)

const (
	defaultDates   = "not specified"
	defaultPurpose = "general travel"
)

// Request is a trip description. Dates and Purpose are optional.
type Request struct {
	Destination string
	Budget      string
	Transport   string
	Dates       string
	Purpose     string
}

// Normalize trims every field, fills the defaults and rejects requests
// missing a destination, budget or transport.
func (r Request) Normalize() (Request, error) {
	r.Destination = strings.TrimSpace(r.Destination)
	r.Budget = strings.TrimSpace(r.Budget)
	r.Transport = strings.TrimSpace(r.Transport)
	r.Dates = strings.TrimSpace(r.Dates)
	r.Purpose = strings.TrimSpace(r.Purpose)

	if r.Destination == "" || r.Budget == "" || r.Transport == "" {
		return Request{}, apperror.InvalidInput("Destination, budget, and transport are required.")
	}
	if r.Dates == "" {
		r.Dates = defaultDates
	}
	if r.Purpose == "" {
		r.Purpose = defaultPurpose
	}
	return r, nil
}

// Prompt renders the instruction sent to the text model.
func (r Request) Prompt() string {
	var b strings.Builder
	b.WriteString("Generate a personalized travel itinerary based on the following:\n")
	fmt.Fprintf(&b, "- Destination: %s\n", r.Destination)
	fmt.Fprintf(&b, "- Budget: $%s\n", r.Budget)
	fmt.Fprintf(&b, "- Transport Preference: %s\n", r.Transport)
	fmt.Fprintf(&b, "- Travel Dates: %s\n", r.Dates)
	fmt.Fprintf(&b, "- Purpose: %s\n", r.Purpose)
	b.WriteString("\nThe itinerary should include:\n")
	b.WriteString("- Suggested activities per day\n")
	b.WriteString("- Places to eat\n")
	b.WriteString("- Local transport advice\n")
	b.WriteString("- Accommodation options within budget\n")
	b.WriteString("- Estimated cost breakdown\n")
	return b.String()
}
