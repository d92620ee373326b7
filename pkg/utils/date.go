package utils

import (
	"time"
)

const DateLayout = "2006-01-02"

func FormatDate(date time.Time) string {
	return date.UTC().Format(DateLayout)
}
