package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MaxLocationNameLength    = 200
	MaxAddressLength         = 300
	MaxCityLength            = 100
	MaxDistrictLength        = 100
	MaxPlaceTypeLength       = 50
	MaxExternalPlaceIDLength = 255
	MaxReasonLength          = 500
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s обязателен", fieldName)
	}
	return nil
}

// ValidatePlainText запрещает управляющие символы, кроме перевода строки и табуляции.
func ValidatePlainText(fieldName, value string) error {
	for _, r := range value {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return fmt.Errorf("%s содержит недопустимые символы", fieldName)
		}
	}
	return nil
}

// ValidateLocationName проверяет название места.
func ValidateLocationName(name string) error {
	if err := ValidateNonEmpty("название места", name); err != nil {
		return err
	}
	if err := ValidateLength("название места", strings.TrimSpace(name), 0, MaxLocationNameLength); err != nil {
		return err
	}
	return ValidatePlainText("название места", name)
}

// ValidateLocationDetails проверяет необязательные текстовые поля места.
func ValidateLocationDetails(address, city, district, placeType, externalPlaceID string) error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"адрес", address, MaxAddressLength},
		{"город", city, MaxCityLength},
		{"район", district, MaxDistrictLength},
		{"тип места", placeType, MaxPlaceTypeLength},
		{"external_place_id", externalPlaceID, MaxExternalPlaceIDLength},
	}
	for _, f := range fields {
		if err := ValidateLength(f.name, f.value, 0, f.max); err != nil {
			return err
		}
		if err := ValidatePlainText(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateReason проверяет причину отказа или отмены. Пустая причина допустима.
func ValidateReason(reason string) error {
	if err := ValidateLength("причина", strings.TrimSpace(reason), 0, MaxReasonLength); err != nil {
		return err
	}
	return ValidatePlainText("причина", reason)
}
