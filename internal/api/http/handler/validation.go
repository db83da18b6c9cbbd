package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dtroode/authflow-server/internal/api/http/response"
)

const passwordSymbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the custom rules on gin's validator engine and
// makes validation errors report JSON field names.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("unexpected validator engine")
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		registerErr = errors.Join(
			v.RegisterValidation("password_strength", passwordStrength),
			v.RegisterValidation("max_bytes", maxBytes),
		)
	})
	return registerErr
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func passwordStrength(fl validator.FieldLevel) bool {
	return PasswordScore(fl.Field().String()) >= 4
}

// maxBytes limits the encoded length of a string; max counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// PasswordScore counts the satisfied strength classes: length of at least 8,
// lower case, upper case, digit and symbol.
func PasswordScore(password string) int {
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsNumber(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}

	score := 0
	for _, ok := range []bool{len(password) >= 8, lower, upper, digit, symbol} {
		if ok {
			score++
		}
	}
	return score
}

// bind decodes the JSON body into req. On failure it writes the 400 response
// and returns false.
func bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		response.Invalid(c, "validation failed", details)
		return false
	}

	response.Error(c, http.StatusBadRequest, "invalid request body")
	return false
}
