package flags

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const (
	toggleTypeNameConstant             = "toggle"
	toggleParseErrorTemplateConstant   = "invalid toggle value %q (use true/false, yes/no, on/off)"
	toggleNoOptionDefaultValueConstant = "true"
)

type toggleValue struct {
	target *bool
}

func newToggleValue(target *bool, defaultValue bool) *toggleValue {
	*target = defaultValue
	return &toggleValue{target: target}
}

func (value *toggleValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}
	*value.target = parsedValue
	return nil
}

func (value *toggleValue) Type() string {
	return toggleTypeNameConstant
}

// IsBoolFlag lets the flag appear without an explicit value.
func (value *toggleValue) IsBoolFlag() bool {
	return true
}

// AddToggleFlag registers a boolean flag accepting yes/no and on/off spellings. A nil target
// allocates storage owned by the flag.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || flagSet.Lookup(name) != nil {
		return
	}
	if target == nil {
		target = new(bool)
	}
	flag := flagSet.VarPF(newToggleValue(target, defaultValue), name, shorthand, usage)
	flag.NoOptDefVal = toggleNoOptionDefaultValueConstant
}

func parseToggleValue(rawValue string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(rawValue)) {
	case "true", "t", "1", "yes", "y", "on":
		return true, nil
	case "false", "f", "0", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf(toggleParseErrorTemplateConstant, rawValue)
	}
}
