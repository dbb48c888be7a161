package runner

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	v1 "github.com/ivanov-dv/data-generator/apis/v1"
	"github.com/ivanov-dv/data-generator/internal/engine"
)

// BuildVariables creates the variables available to ${VAR} expansion: the
// built-in JOB_* variables plus every allowed environment variable. An
// allowed variable that is not set is an error.
func BuildVariables(job v1.Job, allowedEnv []string) (map[string]string, error) {
	date := time.Now().UTC()
	variables := map[string]string{
		"JOB_NAME":         job.Metadata.Name,
		"JOB_DATE_ISO8601": date.Format(engine.ISO8601Basic),
		"JOB_DATE_RFC3339": date.Format(time.RFC3339),
	}

	var errs error
	for _, envName := range allowedEnv {
		val, ok := os.LookupEnv(envName)
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("environment variable %q is not set", envName))
			continue
		}
		variables[envName] = val
	}

	if errs != nil {
		return nil, errs
	}

	return variables, nil
}

// ExpandTemplates updates, in place, every string and []string field of the
// struct pointed to by in that carries a `template` tag. Nested structs and
// non-nil struct pointers are walked regardless of tags; `template:"-"`
// opts a field out.
func ExpandTemplates[T any](in *T, variables map[string]string) error {
	if in == nil {
		return nil
	}

	v := reflect.ValueOf(in).Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("ExpandTemplates expects a pointer to a struct; got *%s", v.Type())
	}
	return expandStruct(v, variables)
}

func expandStruct(v reflect.Value, variables map[string]string) error {
	typ := v.Type()
	for i := range typ.NumField() {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, tagged := sf.Tag.Lookup("template")
		tagged = tagged && tag != "-"
		field := v.Field(i)

		switch field.Kind() {
		case reflect.String:
			if tagged {
				if err := expandValue(field, variables); err != nil {
					return fmt.Errorf("%s: %w", sf.Name, err)
				}
			}

		case reflect.Slice:
			if !tagged || field.Type().Elem().Kind() != reflect.String {
				continue
			}
			for j := range field.Len() {
				if err := expandValue(field.Index(j), variables); err != nil {
					return fmt.Errorf("%s[%d]: %w", sf.Name, j, err)
				}
			}

		case reflect.Struct:
			if err := expandStruct(field, variables); err != nil {
				return err
			}

		case reflect.Ptr:
			if field.IsNil() || field.Elem().Kind() != reflect.Struct {
				continue
			}
			if err := expandStruct(field.Elem(), variables); err != nil {
				return err
			}
		}
	}
	return nil
}

func expandValue(v reflect.Value, variables map[string]string) error {
	expanded, err := Expand(v.String(), variables)
	if err != nil {
		return err
	}
	v.SetString(expanded)
	return nil
}

// Expand replaces ${VAR} references in the input string using the provided variables map.
// Returns an error if any referenced variable is not in the variables map.
func Expand(value string, variables map[string]string) (string, error) {
	var errs error

	result := os.Expand(value, func(key string) string {
		if val, ok := variables[key]; ok {
			return val
		}
		errs = errors.Join(errs, fmt.Errorf("environment variable %q is not in the allowed list", key))
		return ""
	})

	if errs != nil {
		return "", errs
	}

	return result, nil
}
