package vehicles

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/wandip/drivesim/pkg/models"
)

// DefaultVehicleID is the preset used when no vehicle is requested
const DefaultVehicleID = "coupe"

var (
	ErrVehicleNotFound = errors.New("no vehicle found with id")
	ErrInvalidPreset   = errors.New("vehicle preset failed validation")
)

// Dimensions describes the authored chassis body box in metres, wheels excluded.
type Dimensions struct {
	Length float64 `json:"Length"`
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
}

// Vehicle holds the tuning constants for a single vehicle preset. Distances are
// in metres, forces in newtons and angles in radians.
type Vehicle struct {
	ID                    string     `json:"ID"`
	Name                  string     `json:"Name"`
	Mass                  float64    `json:"Mass"`
	Dimensions            Dimensions `json:"Dimensions"`
	Wheelbase             float64    `json:"Wheelbase"`
	TrackFront            float64    `json:"TrackFront"`
	TrackRear             float64    `json:"TrackRear"`
	MountHeight           float64    `json:"MountHeight"`
	WheelRadius           float64    `json:"WheelRadius"`
	WheelWidth            float64    `json:"WheelWidth"`
	SuspensionRestLength  float64    `json:"SuspensionRestLength"`
	SuspensionMaxTravel   float64    `json:"SuspensionMaxTravel"`
	SuspensionStiffness   float64    `json:"SuspensionStiffness"`
	SuspensionCompression float64    `json:"SuspensionCompression"`
	SuspensionRelaxation  float64    `json:"SuspensionRelaxation"`
	MaxSuspensionForce    float64    `json:"MaxSuspensionForce"`
	FrictionSlip          float64    `json:"FrictionSlip"`
	LinearDamping         float64    `json:"LinearDamping"`
	AngularDamping        float64    `json:"AngularDamping"`
	MaxSteerAngle         float64    `json:"MaxSteerAngle"`
	SteerResponse         float64    `json:"SteerResponse"`
	EngineForceStep       float64    `json:"EngineForceStep"`
	EngineForceMax        float64    `json:"EngineForceMax"`
	EngineForceMin        float64    `json:"EngineForceMin"`
	EngineForceDecay      float64    `json:"EngineForceDecay"`
	BrakeForceStep        float64    `json:"BrakeForceStep"`
	BrakeForceMax         float64    `json:"BrakeForceMax"`
	FallbackImpulseScale  float64    `json:"FallbackImpulseScale"`
	SpawnHeight           float64    `json:"SpawnHeight"`
}

// VehicleInventory represents the complete JSON structure of the vehicle presets.
type VehicleInventory map[string]Vehicle

// VehicleDB provides an object and methods to access vehicle presets.
type VehicleDB struct {
	inventory VehicleInventory
}

//go:embed vehicles.json
var baseInventoryJSON []byte

//go:embed schema.json
var inventorySchemaJSON []byte

// NewDB creates a new VehicleDB, falling back to the embedded presets when no JSON is given.
// Every preset is validated against the embedded inventory schema.
func NewDB(inventoryJSON []byte) (*VehicleDB, error) {
	inventory := VehicleInventory{}

	if inventoryJSON == nil {
		inventoryJSON = baseInventoryJSON
	}

	err := json.Unmarshal(inventoryJSON, &inventory)
	if err != nil {
		return &VehicleDB{}, fmt.Errorf("unmarshall vehicle inventory JSON: %w", err)
	}

	err = Validate(inventoryJSON)
	if err != nil {
		return &VehicleDB{}, err
	}

	for id, vehicle := range inventory {
		if vehicle.ID == "" {
			vehicle.ID = id
			inventory[id] = vehicle
		}
	}

	return &VehicleDB{
		inventory: inventory,
	}, nil
}

// Validate checks an inventory document against the preset schema.
func Validate(inventoryJSON []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	var document any

	err = json.Unmarshal(inventoryJSON, &document)
	if err != nil {
		return fmt.Errorf("unmarshall vehicle inventory JSON: %w", err)
	}

	err = schema.Validate(document)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}

	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	err := compiler.AddResource("schema.json", bytes.NewReader(inventorySchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return schema, nil
}

// GetVehicleByID retrieves a Vehicle preset by its ID.
func (i *VehicleDB) GetVehicleByID(id string) (Vehicle, error) {
	vehicle, ok := i.inventory[id]
	if !ok {
		return Vehicle{}, fmt.Errorf("%w: %q", ErrVehicleNotFound, id)
	}

	return vehicle, nil
}

// IDs returns the preset IDs in sorted order.
func (i *VehicleDB) IDs() []string {
	ids := make([]string, 0, len(i.inventory))
	for id := range i.inventory {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// HalfExtents returns the chassis box half extents from the authored dimensions.
func (v *Vehicle) HalfExtents() mgl64.Vec3 {
	return mgl64.Vec3{v.Dimensions.Width / 2, v.Dimensions.Height / 2, v.Dimensions.Length / 2}
}

// WheelMount returns the chassis-local suspension hardpoint for a slot.
// The chassis faces -Z with +X to its right and +Y up.
func (v *Vehicle) WheelMount(slot models.WheelSlot) mgl64.Vec3 {
	halfTrack := v.TrackRear / 2
	z := v.Wheelbase / 2

	if slot.IsFront() {
		halfTrack = v.TrackFront / 2
		z = -z
	}

	x := halfTrack
	if slot == models.FrontLeft || slot == models.RearLeft {
		x = -x
	}

	return mgl64.Vec3{x, v.MountHeight, z}
}
