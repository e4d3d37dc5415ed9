package parser

import (
	"regexp"
	"strings"
)

var (
	phoneRe    = regexp.MustCompile(`\+\d+(?:\s+\d{3}){0,3}|\d{3}\s+\d{3}\s+\d{3}`)
	nameOnlyRe = regexp.MustCompile(`^[\p{L}\s]+$`)
)

// Contact is the located name line and the phone found on it.
type Contact struct {
	LineIndex int
	Name      string
	Phone     string
}

// LocateContact finds the first line carrying a phone number and reads the
// person's name from it.
func LocateContact(lines []string) (Contact, bool) {
	for i, line := range lines {
		loc := phoneRe.FindStringIndex(line)
		if loc == nil {
			continue
		}
		phone := strings.Join(strings.Fields(line[loc[0]:loc[1]]), "")

		name := strings.TrimSpace(line[:loc[0]])
		if name == "" || !nameOnlyRe.MatchString(name) {
			name = strings.Join(strings.Fields(line[:loc[0]]+" "+line[loc[1]:]), " ")
		}
		return Contact{LineIndex: i, Name: name, Phone: phone}, true
	}
	return Contact{}, false
}
