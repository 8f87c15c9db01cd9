package server

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/pkg/dateutil"
)

var registerOnce sync.Once

// registerValidators adds the isodate and region tags to gin's validator
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		if err := v.RegisterValidation("isodate", validateISODate); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("region", validateRegion); err != nil {
			panic(err)
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(dateutil.Layout, fl.Field().String())
	return err == nil
}

func validateRegion(fl validator.FieldLevel) bool {
	_, err := calendar.ParseRegion(fl.Field().String())
	return err == nil
}

// validationMessages turns binding errors into per-field messages
func validationMessages(err error) []string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		var msg string
		switch e.Tag() {
		case "required":
			msg = "is required"
		case "isodate":
			msg = "must be a YYYY-MM-DD date"
		case "region":
			msg = "must be one of england-wales, scotland, northern-ireland"
		case "min", "max":
			msg = "is out of range"
		default:
			msg = "is invalid"
		}
		messages = append(messages, e.Field()+" "+msg)
	}
	return messages
}
