package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/wandip/drivesim/pkg/vehicles"
)

// convertFile converts between JSON and CSV formats based on the format parameter.
func convertFile(inputFile, format string, out io.Writer) error {
	switch format {
	case "csv":
		return jsonToCSV(inputFile, out)
	case "json":
		return csvToJSON(inputFile, out)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func jsonToCSV(inputFile string, out io.Writer) error {
	inventory, err := loadPresets(inputFile)
	if err != nil {
		return err
	}

	rows := make([]presetRow, 0, len(inventory))
	for _, vehicle := range sortedPresets(inventory) {
		rows = append(rows, rowFromVehicle(vehicle))
	}

	return writePresetsCSV(out, rows)
}

func writePresetsCSV(out io.Writer, rows []presetRow) error {
	err := gocsv.Marshal(&rows, out)
	if err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}

	return nil
}

func csvToJSON(inputFile string, out io.Writer) error {
	inventory, err := loadPresetsCSV(inputFile)
	if err != nil {
		return err
	}

	return writePresetsJSON(out, inventory)
}

// loadPresets reads and validates a JSON preset file.
func loadPresets(inputFile string) (vehicles.VehicleInventory, error) {
	jsonData, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, fmt.Errorf("reading JSON file: %w", err)
	}

	err = vehicles.Validate(jsonData)
	if err != nil {
		return nil, err
	}

	inventory := vehicles.VehicleInventory{}

	err = json.Unmarshal(jsonData, &inventory)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	for id, vehicle := range inventory {
		if vehicle.ID == "" {
			vehicle.ID = id
			inventory[id] = vehicle
		}
	}

	return inventory, nil
}

func loadPresetsCSV(inputFile string) (vehicles.VehicleInventory, error) {
	inputF, err := os.Open(inputFile)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}

	defer func() {
		err := inputF.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing input file: %v\n", err)
		}
	}()

	rows := []presetRow{}

	err = gocsv.Unmarshal(inputF, &rows)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	return rowsToInventory(rows)
}

func rowsToInventory(rows []presetRow) (vehicles.VehicleInventory, error) {
	inventory := make(vehicles.VehicleInventory, len(rows))

	for _, row := range rows {
		if row.ID == "" {
			return nil, ErrPresetIDRequired
		}

		if _, exists := inventory[row.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePresetID, row.ID)
		}

		inventory[row.ID] = row.vehicle()
	}

	return inventory, nil
}

// writePresetsJSON encodes the inventory and checks the result against the
// preset schema before writing it out.
func writePresetsJSON(out io.Writer, inventory vehicles.VehicleInventory) error {
	jsonData, err := json.MarshalIndent(inventory, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	err = vehicles.Validate(jsonData)
	if err != nil {
		return err
	}

	_, err = out.Write(append(jsonData, '\n'))

	return err
}

func sortedPresets(inventory vehicles.VehicleInventory) []vehicles.Vehicle {
	ids := make([]string, 0, len(inventory))
	for id := range inventory {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	presets := make([]vehicles.Vehicle, 0, len(ids))
	for _, id := range ids {
		presets = append(presets, inventory[id])
	}

	return presets
}
