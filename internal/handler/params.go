package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// queryParam binds the optional query parameter name into dest, which must be
// a pointer to a pointer. dest is left nil when the parameter is absent.
func queryParam(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return fmt.Errorf("invalid %s parameter", name)
	}
	return nil
}

// parseDate accepts either a full RFC 3339 timestamp or a calendar date
// (YYYY-MM-DD, taken as midnight UTC).
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(openapi_types.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

// dayBounds converts optional calendar dates into an inclusive time range:
// from starts at midnight and to runs to the last instant of its day.
func dayBounds(from, to *openapi_types.Date) (*time.Time, *time.Time) {
	var start, end *time.Time
	if from != nil {
		t := from.Time
		start = &t
	}
	if to != nil {
		t := to.Time.AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &t
	}
	return start, end
}
