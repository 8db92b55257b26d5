// Package banner renders the startup banner, rotating tagline, and the
// mandatory legal notice.
package banner

import (
	"fmt"
	"math/rand"
	"strings"
)

const art = `
__  ______ ____  _          _
\ \/ / ___/ ___|| |    __ _| |__
 \  /\___ \___ \| |   / _` + "`" + ` | '_ \
 /  \ ___) |__) | |__| (_| | |_) |
/_/\_\____/____/|_____\__,_|_.__/
`

var taglines = []string{
	"Payloads With A Lesson Plan.",
	"Offense Practice, Defense Insights.",
	"Classroom Drills For Curious Hackers.",
	"Lab-Grade Mischief, Safely Contained.",
	"Because Exploits Deserve Office Hours.",
	"Where Payloads Earn Their Diplomas.",
	"Hands-On Vulns, Zero Production Drama.",
	"Proof-of-Concepts With A Syllabus.",
}

const legalNotice = `
=============================== LEGAL NOTICE ===============================

WARNING: AUTHORIZED USE ONLY

This tool is designed EXCLUSIVELY for:
  + Educational purposes in controlled lab environments
  + Testing against YOUR OWN deliberately vulnerable applications (e.g., DVWA)
  + Authorized security testing with explicit written permission

This tool is FORBIDDEN for:
  - Unauthorized access to computer systems
  - Testing production systems without permission
  - Any malicious or illegal activity

Unauthorized access to computer systems is illegal in virtually every
jurisdiction. The authors assume no liability for misuse of this tool.

============================================================================`

var currentTagline string

// Tagline returns the current tagline, picking a fresh one (avoiding an
// immediate repeat) when refresh is set or none has been chosen yet.
func Tagline(refresh bool) string {
	if !refresh && currentTagline != "" {
		return currentTagline
	}
	candidate := taglines[rand.Intn(len(taglines))]
	for attempts := 0; candidate == currentTagline && attempts < 5; attempts++ {
		candidate = taglines[rand.Intn(len(taglines))]
	}
	currentTagline = candidate
	return currentTagline
}

// Display prints the banner with a fresh tagline and returns the tagline.
func Display() string {
	tagline := Tagline(true)
	fmt.Print(art, "\n")
	underline := strings.Repeat("=", 76)
	fmt.Println(underline)
	fmt.Printf(">> %s\n", tagline)
	fmt.Println(underline)
	return tagline
}

// DisplayLegalNotice prints the mandatory legal warning.
func DisplayLegalNotice() {
	fmt.Println(legalNotice)
}
