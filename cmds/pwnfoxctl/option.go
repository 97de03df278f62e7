package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
)

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(optionsCmd)
}

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the effective value of an option",
	Args:  cobra.ExactArgs(1),
	RunE:  get,
}

var setCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Validate and set an option value",
	Args:  cobra.ExactArgs(2),
	RunE:  set,
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List all options with their current values",
	RunE:  options,
}

func get(cmd *cobra.Command, args []string) error {
	opt, err := config.GetOption(args[0])
	if err != nil {
		return err
	}

	values, err := loadValues()
	if err != nil {
		return err
	}

	value, ok := values[opt.Key]
	if !ok {
		value = opt.DefaultValue
	}
	fmt.Printf("%v\n", value)
	return nil
}

func set(cmd *cobra.Command, args []string) error {
	opt, err := config.GetOption(args[0])
	if err != nil {
		return err
	}

	value, err := parseValue(opt, args[1])
	if err != nil {
		return err
	}
	if err := opt.ValidateValue(value); err != nil {
		return err
	}

	values, err := loadValues()
	if err != nil {
		return err
	}
	values[opt.Key] = value
	if err := saveValues(values); err != nil {
		return err
	}

	fmt.Printf("%s set to %v\n", opt.Key, value)
	return nil
}

func options(cmd *cobra.Command, args []string) error {
	values, err := loadValues()
	if err != nil {
		return err
	}

	for _, opt := range config.ExportOptions() {
		fmt.Printf("%s (%s, %s)\n", opt.Key, opt.Name, optTypeName(opt.OptType))
		fmt.Printf("    %s\n", opt.Description)
		if value, ok := values[opt.Key]; ok {
			fmt.Printf("    value: %s (default: %v)\n", displayValue(value), opt.DefaultValue)
		} else {
			fmt.Printf("    value: %v (default)\n", opt.DefaultValue)
		}
	}
	return nil
}

// parseValue converts a command line argument into the option's value type.
func parseValue(opt *config.Option, arg string) (interface{}, error) {
	switch opt.OptType {
	case config.OptTypeString:
		return arg, nil
	case config.OptTypeBool:
		value, err := strconv.ParseBool(arg)
		if err != nil {
			return nil, fmt.Errorf("%s expects a boolean value: %w", opt.Key, err)
		}
		return value, nil
	case config.OptTypeInt:
		value, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s expects an integer value: %w", opt.Key, err)
		}
		return value, nil
	case config.OptTypeStringArray:
		return strings.Split(arg, ","), nil
	default:
		return nil, fmt.Errorf("option %s has an unsupported type", opt.Key)
	}
}

func optTypeName(optType config.OptionType) string {
	switch optType {
	case config.OptTypeString:
		return "string"
	case config.OptTypeStringArray:
		return "[]string"
	case config.OptTypeInt:
		return "int"
	case config.OptTypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// displayValue trims long values, the saved toolbox data would otherwise
// flood the listing.
func displayValue(value interface{}) string {
	s := fmt.Sprintf("%v", value)
	if len(s) > 64 {
		return s[:64] + "..."
	}
	return s
}
