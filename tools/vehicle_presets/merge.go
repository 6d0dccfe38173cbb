package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/wandip/drivesim/pkg/vehicles"
)

// changeRecord tracks changes made to a preset during merge operations.
type changeRecord struct {
	id      string
	changes []string
	isNew   bool
}

// mergePresets applies the rows of a CSV preset sheet onto a JSON preset file.
// Existing presets are updated field by field and unknown IDs are added.
func mergePresets(jsonFile, csvFile string, out io.Writer, colors *palette, dryRun bool) error {
	inventory, err := loadPresets(jsonFile)
	if err != nil {
		return err
	}

	updates, err := loadPresetsCSV(csvFile)
	if err != nil {
		return err
	}

	changes := performMerge(inventory, updates)

	printChanges(out, changes, colors)

	if dryRun {
		fmt.Fprintf(out, "%s %d preset(s) would change in %s\n", colors.DryRun(), len(changes), jsonFile)

		return nil
	}

	if len(changes) == 0 {
		return nil
	}

	var buf bytes.Buffer

	err = writePresetsJSON(&buf, inventory)
	if err != nil {
		return err
	}

	err = os.WriteFile(jsonFile, buf.Bytes(), 0o600)
	if err != nil {
		return fmt.Errorf("writing preset file: %w", err)
	}

	fmt.Fprintf(out, "%s %d preset(s) written to %s\n", colors.Success("ok"), len(changes), jsonFile)

	return nil
}

func performMerge(inventory, updates vehicles.VehicleInventory) []changeRecord {
	changes := []changeRecord{}

	for _, update := range sortedPresets(updates) {
		existing, ok := inventory[update.ID]
		if !ok {
			inventory[update.ID] = update
			changes = append(changes, changeRecord{id: update.ID, isNew: true})

			continue
		}

		diff := diffPresets(existing, update)
		if len(diff) == 0 {
			continue
		}

		inventory[update.ID] = update
		changes = append(changes, changeRecord{id: update.ID, changes: diff})
	}

	return changes
}

// diffPresets lists the flattened fields that differ between two presets.
func diffPresets(before, after vehicles.Vehicle) []string {
	beforeRow := reflect.ValueOf(rowFromVehicle(before))
	afterRow := reflect.ValueOf(rowFromVehicle(after))
	rowType := beforeRow.Type()

	diff := []string{}

	for i := range rowType.NumField() {
		was := beforeRow.Field(i).Interface()
		now := afterRow.Field(i).Interface()

		if was != now {
			diff = append(diff, fmt.Sprintf("%s: %v -> %v", rowType.Field(i).Tag.Get("csv"), was, now))
		}
	}

	return diff
}

func printChanges(out io.Writer, changes []changeRecord, colors *palette) {
	for _, change := range changes {
		fmt.Fprintln(out, colors.Change(change.id, change.isNew))

		if change.isNew {
			continue
		}

		for _, line := range change.changes {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}
}
