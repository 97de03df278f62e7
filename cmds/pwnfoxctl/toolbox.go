package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/bebiksior/PwnFox-CaidoCompatible/service/toolbox"
)

func init() {
	toolboxCmd.AddCommand(toolboxListCmd)
	toolboxCmd.AddCommand(toolboxSetCmd)
	toolboxCmd.AddCommand(toolboxRmCmd)
	rootCmd.AddCommand(toolboxCmd)
}

var toolboxCmd = &cobra.Command{
	Use:   "toolbox",
	Short: "Manage saved toolbox scripts",
}

var toolboxListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved toolbox scripts, the active one is marked with a star",
	RunE:  toolboxList,
}

var toolboxSetCmd = &cobra.Command{
	Use:   "set NAME [FILE]",
	Short: "Save a toolbox script from a file, or from stdin if no file is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  toolboxSet,
}

var toolboxRmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Remove a saved toolbox script",
	Args:  cobra.ExactArgs(1),
	RunE:  toolboxRm,
}

func toolboxList(cmd *cobra.Command, args []string) error {
	values, err := loadValues()
	if err != nil {
		return err
	}
	saved, err := savedToolboxData(values)
	if err != nil {
		return err
	}

	scripts := gjson.Parse(saved).Map()
	if len(scripts) == 0 {
		fmt.Println("no toolbox scripts saved")
		return nil
	}

	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)

	active, _ := values[toolbox.CfgOptionActiveToolboxKey].(string)
	for _, name := range names {
		marker := " "
		if name == active {
			marker = "*"
		}
		fmt.Printf("%s %s (%d bytes)\n", marker, name, len(scripts[name].String()))
	}
	return nil
}

func toolboxSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	if name == "" {
		return fmt.Errorf("toolbox name must not be empty")
	}

	var script []byte
	var err error
	if len(args) == 2 && args[1] != "-" {
		script, err = os.ReadFile(args[1])
	} else {
		script, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}

	values, err := loadValues()
	if err != nil {
		return err
	}
	saved, err := savedToolboxData(values)
	if err != nil {
		return err
	}

	// Escape the name so it always addresses a single literal key.
	saved, err = sjson.Set(saved, gjson.Escape(name), string(script))
	if err != nil {
		return err
	}
	values[toolbox.CfgOptionSavedToolboxKey] = saved
	if err := saveValues(values); err != nil {
		return err
	}

	fmt.Printf("saved toolbox %q (%d bytes)\n", name, len(script))
	return nil
}

func toolboxRm(cmd *cobra.Command, args []string) error {
	name := args[0]

	values, err := loadValues()
	if err != nil {
		return err
	}
	saved, err := savedToolboxData(values)
	if err != nil {
		return err
	}

	if !gjson.Get(saved, gjson.Escape(name)).Exists() {
		return fmt.Errorf("no toolbox named %q", name)
	}
	saved, err = sjson.Delete(saved, gjson.Escape(name))
	if err != nil {
		return err
	}
	values[toolbox.CfgOptionSavedToolboxKey] = saved

	// Deselect the removed toolbox, injection must not keep a dangling name.
	if active, _ := values[toolbox.CfgOptionActiveToolboxKey].(string); active == name {
		values[toolbox.CfgOptionActiveToolboxKey] = ""
	}

	if err := saveValues(values); err != nil {
		return err
	}

	fmt.Printf("removed toolbox %q\n", name)
	return nil
}

// savedToolboxData returns the saved toolbox JSON from the loaded values.
func savedToolboxData(values map[string]interface{}) (string, error) {
	data, ok := values[toolbox.CfgOptionSavedToolboxKey].(string)
	if !ok || data == "" {
		return "{}", nil
	}
	if !gjson.Valid(data) {
		return "", fmt.Errorf("saved toolbox data is not valid JSON, fix or reset %s", toolbox.CfgOptionSavedToolboxKey)
	}
	return data, nil
}
