package orders

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/TwiN/deepmerge"
	"github.com/mitchellh/mapstructure"

	"github.com/labnet/testorders/errors"
)

// Survey holds the answers of the questionnaire asked when a patient is queued.
type Survey struct {
	Pregnancy       *string         `bson:"pregnancy,omitempty" json:"pregnancy,omitempty" mapstructure:"pregnancy"`
	Symptoms        map[string]bool `bson:"symptoms,omitempty" json:"symptoms,omitempty" mapstructure:"symptoms"`
	NoSymptoms      *bool           `bson:"noSymptoms,omitempty" json:"noSymptoms,omitempty" mapstructure:"noSymptoms"`
	SymptomOnset    *time.Time      `bson:"symptomOnset,omitempty" json:"symptomOnset,omitempty" mapstructure:"symptomOnset"`
	FirstTest       *bool           `bson:"firstTest,omitempty" json:"firstTest,omitempty" mapstructure:"firstTest"`
	PriorTestDate   *time.Time      `bson:"priorTestDate,omitempty" json:"priorTestDate,omitempty" mapstructure:"priorTestDate"`
	PriorTestType   *string         `bson:"priorTestType,omitempty" json:"priorTestType,omitempty" mapstructure:"priorTestType"`
	PriorTestResult *Outcome        `bson:"priorTestResult,omitempty" json:"priorTestResult,omitempty" mapstructure:"priorTestResult"`
}

var timeType = reflect.TypeOf(time.Time{})

// ParseSurvey decodes questionnaire answers. Dates are accepted as YYYY-MM-DD or RFC 3339.
func ParseSurvey(answers map[string]interface{}) (Survey, error) {
	survey := Survey{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  stringToTimeHook,
		ErrorUnused: true,
		Result:      &survey,
	})
	if err != nil {
		return survey, err
	}

	if err := decoder.Decode(answers); err != nil {
		return survey, fmt.Errorf("%w: invalid survey: %v", errors.BadRequest, err)
	}
	if survey.PriorTestResult != nil && !slices.Contains(Outcomes, *survey.PriorTestResult) {
		return survey, fmt.Errorf("%w: invalid survey: unknown prior test result %q", errors.BadRequest, *survey.PriorTestResult)
	}

	return survey, nil
}

// MergeSurvey applies a partial set of answers on top of an existing survey.
func MergeSurvey(survey Survey, patch map[string]interface{}) (Survey, error) {
	if len(patch) == 0 {
		return survey, nil
	}

	current, err := json.Marshal(survey)
	if err != nil {
		return survey, err
	}
	overrides, err := json.Marshal(patch)
	if err != nil {
		return survey, fmt.Errorf("%w: invalid survey: %v", errors.BadRequest, err)
	}

	merged, err := deepmerge.JSON(current, overrides, deepmerge.Config{
		PreventMultipleDefinitionsOfKeysWithPrimitiveValue: false,
	})
	if err != nil {
		return survey, fmt.Errorf("%w: invalid survey: %v", errors.BadRequest, err)
	}

	answers := map[string]interface{}{}
	if err := json.Unmarshal(merged, &answers); err != nil {
		return survey, err
	}
	return ParseSurvey(answers)
}

func stringToTimeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}

	value := data.(string)
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
