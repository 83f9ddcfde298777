// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/quickly-survey/middleware"
	"github.com/danielhkuo/quickly-survey/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate parses the JSON body into req and validates it.
// It writes the error response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := middleware.ParseJSONBody(r, req); err != nil {
		middleware.TaggedError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON")
		return false
	}

	err := validate.Struct(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		middleware.TaggedError(w, http.StatusBadRequest, "invalid_input", "Invalid input")
		return false
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		// Drop the struct name: "options[0].label"
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		fields[ns] = fe.Tag()
	}
	middleware.JSONResponse(w, http.StatusUnprocessableEntity, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Validation failed",
		Fields:  fields,
	})
	return false
}

// normalizeOptions fills missing values from labels. Text questions carry no
// options.
func normalizeOptions(qType string, options []models.Option) []models.Option {
	out := []models.Option{}
	if qType == models.QuestionText {
		return out
	}
	for _, opt := range options {
		label := strings.TrimSpace(opt.Label)
		value := strings.TrimSpace(opt.Value)
		if value == "" {
			value = label
		}
		out = append(out, models.Option{Label: label, Value: value})
	}
	return out
}
