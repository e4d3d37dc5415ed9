package parser

import (
	"regexp"
	"strings"
)

var plateRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Vehicle is a descriptor split into brand, model and plate.
type Vehicle struct {
	Brand string
	Model string
	Plate string
}

// SplitVehicle treats the first token as the brand and an alphanumeric last
// token as the plate. Multi-word brands such as "Land Rover" end up split
// across brand and model.
func SplitVehicle(descriptor string) Vehicle {
	tokens := strings.Fields(descriptor)
	switch len(tokens) {
	case 0:
		return Vehicle{}
	case 1:
		return Vehicle{Brand: tokens[0]}
	}

	last := tokens[len(tokens)-1]
	if plateRe.MatchString(last) {
		return Vehicle{
			Brand: tokens[0],
			Model: strings.Join(tokens[1:len(tokens)-1], " "),
			Plate: last,
		}
	}
	return Vehicle{Brand: tokens[0], Model: strings.Join(tokens[1:], " ")}
}
