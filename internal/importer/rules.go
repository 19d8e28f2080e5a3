package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

const (
	msgBlank       = "can't be blank"
	msgNotNumber   = "is not a number"
	msgNotInteger  = "must be an integer"
	msgBadDate     = "is not a valid date"
	msgPhoneLength = "is the wrong length (should be 10 characters)"
	msgPhoneDigits = "must be numbers"
	msgGender      = "must be Male, Female or Other"
	msgDOBPast     = "must be past"
	msgNameChars   = "must be character, not special char or number"

	labelDateOfBirth = "Date of birth"

	maxEmpIDLength = 10
	phoneLength    = 10
	phonePattern   = `^[0-9\s]*$`
	namePattern    = `^[a-zA-Z\s]*$`
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func isNumber(s string) bool {
	return s != "." && govalidator.IsFloat(s)
}

func tooLong(s string, max int) bool {
	return !govalidator.StringLength(s, "0", strconv.Itoa(max))
}

func tooLongMessage(max int) string {
	return "is too long (maximum is " + strconv.Itoa(max) + " characters)"
}

func wrongLength(s string, n int) bool {
	l := strconv.Itoa(n)
	return !govalidator.StringLength(s, l, l)
}

func isDigitsOrSpace(s string) bool {
	return govalidator.Matches(s, phonePattern)
}

func isLettersOrSpace(s string) bool {
	return govalidator.Matches(s, namePattern)
}

func isGender(s string) bool {
	return govalidator.IsIn(strings.ToLower(s), "male", "female", "other", "others")
}

// parseInt converts a numeric cell to an integer. Values such as "7.0" are accepted.
func parseInt(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

// parseTruncated converts a numeric cell to an integer, dropping any fraction.
func parseTruncated(s string) (int64, bool) {
	if n, ok := parseInt(s); ok {
		return n, true
	}
	if !isNumber(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

// isPast reports whether d falls on a day strictly before the day of now.
func isPast(d, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return day.Before(today)
}
