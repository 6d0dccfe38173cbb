package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wandip/drivesim/pkg/vehicles"
)

const usage = `vehicle_presets - Convert, validate and merge vehicle preset data

Usage:
  vehicle_presets <action> [arguments]

Actions:
  convert  <file.csv|file.json>       Convert between JSON and CSV formats
  validate <file.json>                Check a preset file against the preset schema
  list     [file.json]                List presets (embedded presets when no file is given)
  merge    <file.json> <file.csv>     Apply a CSV preset sheet to a JSON preset file

Flags:
  -help                    Show this help message
  -no-color                Disable colored output
  -dry-run                 Show changes without modifying files

Output format is determined by input file extension:
  .json files are converted to CSV format
  .csv files are converted to JSON format

Examples:
  # Export the presets for editing in a spreadsheet
  vehicle_presets convert pkg/vehicles/vehicles.json > presets.csv

  # Apply the edited sheet back
  vehicle_presets merge pkg/vehicles/vehicles.json presets.csv
`

type cliFlags struct {
	help    bool
	noColor bool
	dryRun  bool
}

func parseCLI() (cliFlags, []string) {
	flags := cliFlags{}

	flag.BoolVar(&flags.help, "help", false, "Show help message")
	flag.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&flags.dryRun, "dry-run", false, "Show changes without modifying files")

	flag.Parse()

	return flags, flag.Args()
}

func main() {
	flags, args := parseCLI()

	if flags.help {
		fmt.Print(usage)

		os.Exit(0)
	}

	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Error: Action is required\n\n")
		fmt.Print(usage)

		os.Exit(1)
	}

	colors := newPalette(flags.noColor)

	var retCode int

	switch action := args[0]; action {
	case "convert":
		retCode = handleConvertAction(args)
	case "validate":
		retCode = handleValidateAction(args, colors)
	case "list":
		retCode = handleListAction(args, colors)
	case "merge":
		retCode = handleMergeAction(args, flags, colors)
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown action '%s'. Supported actions: convert, validate, list, merge\n\n", action)
		fmt.Print(usage)

		retCode = 1
	}

	os.Exit(retCode)
}

func handleConvertAction(args []string) int {
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Error: Input file argument is required for convert action\n\n")
		fmt.Print(usage)

		return 1
	}

	inputFile := args[1]

	outputFormat, err := determineOutputFormat(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return 1
	}

	err = convertFile(inputFile, outputFormat, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return 1
	}

	return 0
}

func handleValidateAction(args []string, colors *palette) int {
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Error: Preset file argument is required for validate action\n\n")

		return 1
	}

	inventory, err := loadPresets(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", colors.Failure("invalid"), err)

		return 1
	}

	fmt.Printf("%s %d preset(s) in %s\n", colors.Success("valid"), len(inventory), args[1])

	return 0
}

func handleListAction(args []string, colors *palette) int {
	var (
		inventory vehicles.VehicleInventory
		err       error
	)

	if len(args) > 1 {
		inventory, err = loadPresets(args[1])
	} else {
		inventory, err = embeddedPresets()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return 1
	}

	for _, vehicle := range sortedPresets(inventory) {
		fmt.Printf("%-12s %-24s %7.0f kg  engine %5.0f N  brake %5.0f N\n",
			colors.Preset(vehicle.ID), vehicle.Name, vehicle.Mass, vehicle.EngineForceMax, vehicle.BrakeForceMax)
	}

	return 0
}

func handleMergeAction(args []string, flags cliFlags, colors *palette) int {
	if len(args) < 3 {
		fmt.Fprintf(os.Stderr, "Error: JSON and CSV file arguments are required for merge action\n\n")
		fmt.Print(usage)

		return 1
	}

	err := mergePresets(args[1], args[2], os.Stdout, colors, flags.dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", colors.Failure("merge failed"), err)

		return 1
	}

	return 0
}

func embeddedPresets() (vehicles.VehicleInventory, error) {
	db, err := vehicles.NewDB(nil)
	if err != nil {
		return nil, err
	}

	inventory := vehicles.VehicleInventory{}

	for _, id := range db.IDs() {
		vehicle, err := db.GetVehicleByID(id)
		if err != nil {
			return nil, err
		}

		inventory[id] = vehicle
	}

	return inventory, nil
}

func determineOutputFormat(inputFile string) (string, error) {
	if inputFile == "/dev/stdin" || inputFile == "-" {
		return "", errors.New("cannot determine format from stdin. Please use a file with .json or .csv extension") //nolint:err113
	}

	ext := strings.ToLower(filepath.Ext(inputFile))
	switch ext {
	case ".json":
		return "csv", nil
	case ".csv":
		return "json", nil
	default:
		return "", fmt.Errorf("%w: extension '%s'. Supported extensions: .json, .csv", ErrUnsupportedFormat, ext)
	}
}
