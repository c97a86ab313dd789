package services

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

// validateCommand validates the struct tags of a command and reports failures with message
func validateCommand(cmd interface{}, message string) error {
	if err := validate.Struct(cmd); err != nil {
		return NewValidationError(message, err)
	}
	return nil
}

// parseMaterialID parses a material id path parameter
func parseMaterialID(id string) (int64, error) {
	if id == "" {
		return 0, NewValidationError("Material ID is required", nil)
	}
	materialID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, NewValidationError("Invalid Material ID", err)
	}
	return materialID, nil
}

// NumericID is a material id in a request body. Besides a JSON number it
// accepts a quoted decimal string, which is what form posts send.
type NumericID int64

func (n *NumericID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || data[0] != '"' {
		var v int64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*n = NumericID(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return errors.Errorf("invalid numeric id %q", s)
	}
	*n = NumericID(v)
	return nil
}
