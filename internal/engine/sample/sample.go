// Package sample provides the terminal fallback: a fixed illustrative
// ranking table with the expected column layout.
package sample

import (
	"context"

	"github.com/law-makers/iemrank/pkg/models"
)

// Name is the strategy name reported in logs and outcomes
const Name = "sample"

// Header is the column set of the ranking table
var Header = models.Row{"Rank", "Value", "Name", "Price", "Signature", "Notes", "Tone Grade", "Tech Grade", "Drivers"}

var entries = models.Dataset{
	{"S-", "★", "Elysian Annihilator (2021)", "3700", "U-shaped", "", "S-", "S", "2EST 4BA 1DD"},
	{"S-", "★★", "ThieAudio Monarch Mk2", "1000", "Neutral with bass boost", "", "S+", "A+", "2EST 6BA 1DD"},
	{"A+", "★★★", "Moondrop Variations", "520", "U-shaped", "Sub-bass-focused signature with Moondrop's clean tuning", "S", "A", "2EST 2BA 1DD"},
	{"A+", "★", "Hidition NT6", "1050", "Neutral", "If Etymotic made a multi-BA IEM, this would be the closest", "S-", "A+", "6BA"},
	{"A+", "★★", "Sennheiser IE600", "700", "U-shaped", "Well-tuned mids, powerful yet controlled sub-bass", "A+", "A+", "DD"},
}

// Rows returns the header followed by the sample entries. The result is a
// fresh copy on every call.
func Rows() models.Dataset {
	out := make(models.Dataset, 0, len(entries)+1)
	out = append(out, append(models.Row(nil), Header...))
	return append(out, entries.Clone()...)
}

// Strategy always produces the sample dataset
type Strategy struct{}

// New creates the sample strategy
func New() Strategy {
	return Strategy{}
}

// Name returns the name of this strategy
func (Strategy) Name() string {
	return Name
}

// Extract ignores its arguments and returns the sample rows
func (Strategy) Extract(context.Context, string) models.Result {
	return models.Found(Rows())
}
