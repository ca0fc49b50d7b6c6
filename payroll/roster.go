package payroll

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// ROSTER VALIDATION
// =============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so API clients can map them back.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalizeWorker trims the text fields and checks that none are empty.
// Nothing is written when it fails.
func normalizeWorker(w Worker) (Worker, error) {
	w.GivenName = strings.TrimSpace(w.GivenName)
	w.FamilyName = strings.TrimSpace(w.FamilyName)
	w.EmployeeCode = strings.TrimSpace(w.EmployeeCode)

	if err := validate.Struct(w); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return w, err
		}
		verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
		for _, fe := range fieldErrs {
			verr.Fields[fe.Field()] = fe.Tag()
		}
		return w, verr
	}
	return w, nil
}

// =============================================================================
// SEARCH
// =============================================================================

// MatchesSearch reports whether term is a substring of the worker's given
// name, family name or employee code. The empty term matches everyone.
func (w Worker) MatchesSearch(term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(w.GivenName, term) ||
		strings.Contains(w.FamilyName, term) ||
		strings.Contains(w.EmployeeCode, term)
}

// FilterWorkers keeps the workers matching term, preserving order.
func FilterWorkers(workers []Worker, term string) []Worker {
	out := make([]Worker, 0, len(workers))
	for _, w := range workers {
		if w.MatchesSearch(term) {
			out = append(out, w)
		}
	}
	return out
}

// DefaultRoster is the shift-B crew the form starts with.
func DefaultRoster() []Worker {
	return []Worker{
		{GivenName: "สมชาย", FamilyName: "ใจดี", EmployeeCode: "G001"},
		{GivenName: "สมหญิง", FamilyName: "รักงาน", EmployeeCode: "G002"},
		{GivenName: "วิชัย", FamilyName: "ขยัน", EmployeeCode: "G003"},
	}
}
