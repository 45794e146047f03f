package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// fileSuffix marks a variable whose value is read from the named file, as with
// JWT_SECRET_FILE=/run/secrets/jwt
const fileSuffix = "_FILE"

// lookupEnv resolves one env tag. A tag may list several names separated by
// commas; the first one set wins. NAME_FILE is consulted after NAME.
func lookupEnv(tag string) (string, bool, error) {
	for _, name := range strings.Split(tag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if v, ok := os.LookupEnv(name); ok {
			return v, true, nil
		}
		if path, ok := os.LookupEnv(name + fileSuffix); ok {
			b, err := os.ReadFile(path)
			if err != nil {
				return "", false, fmt.Errorf("read %s%s: %w", name, fileSuffix, err)
			}
			return strings.TrimRight(string(b), "\r\n"), true, nil
		}
	}
	return "", false, nil
}

// applyEnv walks s and overrides every field carrying an env tag whose variable
// is set. It returns the tags that were applied.
func applyEnv(s interface{}) ([]string, error) {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, nil
	}

	var applied []string
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if field.Kind() == reflect.Struct {
			nested, err := applyEnv(field.Addr().Interface())
			if err != nil {
				return nil, err
			}
			applied = append(applied, nested...)
			continue
		}

		tag := fieldType.Tag.Get("env")
		if tag == "" {
			continue
		}
		value, ok, err := lookupEnv(tag)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if err := setFieldFromEnv(field, value); err != nil {
			return nil, fmt.Errorf("failed to set field %s from env %s: %w", fieldType.Name, tag, err)
		}
		applied = append(applied, tag)
	}
	return applied, nil
}

// setFieldFromEnv sets a field value from an environment variable string
func setFieldFromEnv(field reflect.Value, value string) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration format: %w", err)
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer format: %w", err)
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid boolean format: %w", err)
		}
		field.SetBool(b)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("invalid float format: %w", err)
		}
		field.SetFloat(f)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
