package service

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var mobileRE = regexp.MustCompile(`^\+?1?\d{9,15}$`)

const (
	maxVisitorName  = 100
	maxVisitorEmail = 254
	maxUserEmail    = 255
	maxMobile       = 15
	maxPurpose      = 255
	maxEmployeeName = 255
	maxUserName     = 255
	maxScanPayload  = 255
	maxCatalogName  = 100
	minPassword     = 8
	maxPassword     = 72 // bcrypt input limit, in bytes
)

// validator collects the first error per call chain so call sites read
// as a flat list of rules.
type validator struct {
	err error
}

func (v *validator) fail(field, msg string) {
	if v.err == nil {
		v.err = invalid(field, msg)
	}
}

func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.fail(field, "This field is required.")
	}
}

func (v *validator) maxLen(field, value string, n int) {
	if utf8.RuneCountInString(value) > n {
		v.fail(field, "Ensure this field has no more than "+strconv.Itoa(n)+" characters.")
	}
}

func (v *validator) email(field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		v.required(field, value)
		return
	}
	v.maxLen(field, value, max)
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		v.fail(field, "Enter a valid email address.")
	}
}

func (v *validator) mobile(field, value string) {
	v.required(field, value)
	v.maxLen(field, value, maxMobile)
	if value != "" && !mobileRE.MatchString(value) {
		v.fail(field, "Enter a valid mobile number.")
	}
}

func (v *validator) passwords(p1, p2 string) {
	if p1 != p2 {
		v.fail("password", "Passwords do not match.")
	}
	if utf8.RuneCountInString(p1) < minPassword {
		v.fail("password", "Ensure this field has at least "+strconv.Itoa(minPassword)+" characters.")
	}
	if len(p1) > maxPassword {
		v.fail("password", "Ensure this field has no more than "+strconv.Itoa(maxPassword)+" bytes.")
	}
}
